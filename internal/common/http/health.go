package http

import (
	"net/http"

	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("health check request")
		WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "Server is running!"})
	}
}
