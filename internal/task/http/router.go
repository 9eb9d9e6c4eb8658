package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	"github.com/AlibekovAA/task-manager/backend/internal/task/domain"
	"github.com/AlibekovAA/task-manager/backend/internal/task/service"
)

type createTaskRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,task_status"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Status      *string `json:"status" validate:"omitnil,task_status"`
}

type taskResponse struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

type Handler struct {
	tasks     *service.TaskService
	validator *commonhttp.RequestValidator
	log       *logger.Logger
}

func NewHandler(tasks *service.TaskService, log *logger.Logger) *Handler {
	v := commonhttp.NewRequestValidator()
	v.RegisterRule("task_status", func(s string) bool {
		_, ok := domain.ParseStatus(s)
		return ok
	})
	return &Handler{tasks: tasks, validator: v, log: log}
}

// RegisterRoutes mounts /tasks behind the auth gate.
func RegisterRoutes(router *mux.Router, h *Handler, authGate *gate.Gate, requestTimeout time.Duration) {
	sub := router.PathPrefix("/tasks").Subrouter()
	sub.Use(authGate.Middleware, commonhttp.WithTimeout(requestTimeout))

	sub.HandleFunc("", h.list).Methods(http.MethodGet)
	sub.HandleFunc("", h.create).Methods(http.MethodPost)
	sub.HandleFunc("/{id}", h.update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", h.remove).Methods(http.MethodDelete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := service.OwnerFromContext(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	tasks, err := h.tasks.List(r.Context(), owner)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, err := service.OwnerFromContext(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	var req createTaskRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := h.validator.Validate(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	task, err := h.tasks.Create(r.Context(), owner, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, taskResponse{Message: "Task created successfully", Task: task})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, err := service.OwnerFromContext(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	id, err := taskID(r)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	var req updateTaskRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	trimPtr(req.Title)
	trimPtr(req.Description)
	if err := h.validator.Validate(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	task, err := h.tasks.Update(r.Context(), owner, id, service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, taskResponse{Message: "Task updated successfully", Task: task})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	owner, err := service.OwnerFromContext(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	id, err := taskID(r)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if err := h.tasks.Delete(r.Context(), owner, id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteMessage(w, http.StatusOK, "Task deleted successfully")
}

func taskID(r *http.Request) (domain.ID, error) {
	raw := mux.Vars(r)["id"]
	if err := commonhttp.ValidateUUID(raw); err != nil {
		return "", service.ErrInvalidTaskID.WithCause(err)
	}
	// stored ids are canonical lower-case uuids
	return domain.ID(uuid.MustParse(raw).String()), nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
