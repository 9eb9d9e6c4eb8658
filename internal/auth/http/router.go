package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	"github.com/AlibekovAA/task-manager/backend/internal/auth/service"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/task-manager/backend/internal/user/domain"
)

type registerRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=30,username"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
}

func (r *registerRequest) normalize() {
	r.Username = service.NormalizeUsername(r.Username)
	r.Email = service.NormalizeEmail(r.Email)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    userdomain.Summary `json:"user"`
}

type RouteOptions struct {
	Gate            *gate.Gate
	LoginLimiter    commonhttp.Limiter
	RegisterLimiter commonhttp.Limiter
	RequestTimeout  time.Duration
}

type Handler struct {
	auth      *service.AuthService
	validator *commonhttp.RequestValidator
	log       *logger.Logger
}

func NewHandler(auth *service.AuthService, log *logger.Logger) *Handler {
	v := commonhttp.NewRequestValidator()
	v.RegisterRule("username", service.IsValidUsername)
	return &Handler{auth: auth, validator: v, log: log}
}

// RegisterRoutes mounts the /auth routes on router.
func RegisterRoutes(router *mux.Router, h *Handler, opts RouteOptions) {
	sub := router.PathPrefix("/auth").Subrouter()
	sub.Use(commonhttp.WithTimeout(opts.RequestTimeout))

	sub.Handle("/register", limited(opts.RegisterLimiter, "register", h.log, http.HandlerFunc(h.register))).Methods(http.MethodPost)
	sub.Handle("/login", limited(opts.LoginLimiter, "login", h.log, http.HandlerFunc(h.login))).Methods(http.MethodPost)
	sub.Handle("/logout", opts.Gate.Middleware(http.HandlerFunc(h.logout))).Methods(http.MethodPost)
	sub.Handle("/me", opts.Gate.Middleware(http.HandlerFunc(h.me))).Methods(http.MethodGet)
}

func limited(limiter commonhttp.Limiter, limiterType string, log *logger.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return commonhttp.RateLimitMiddleware(limiter, limiterType, log)(next)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	req.normalize()
	if err := h.validator.Validate(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	req.Username = service.NormalizeUsername(req.Username)
	if err := h.validator.Validate(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	})
}

// logout keeps no server state: the token stays valid until it expires and
// the client is expected to discard it.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := gate.IdentityFromContext(r.Context())
	h.log.WithFields(r.Context(), logger.Fields{
		"user_id": string(identity.UserID),
		"action":  "logout",
	}).Info("logout")
	commonhttp.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := gate.IdentityFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, gate.ErrUnauthenticated, h.log)
		return
	}

	user, err := h.auth.Me(r.Context(), identity.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, user)
}
