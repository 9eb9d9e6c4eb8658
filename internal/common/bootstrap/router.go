package bootstrap

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/task-manager/backend/internal/auth/http"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	taskhttp "github.com/AlibekovAA/task-manager/backend/internal/task/http"
)

// NewRouter serves the API under /api and prometheus metrics at /metrics.
func NewRouter(app *App) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = commonhttp.NotFoundHandler()
	router.MethodNotAllowedHandler = commonhttp.MethodNotAllowedHandler()

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", commonhttp.HealthHandler(app.Log)).Methods(http.MethodGet)

	authhttp.RegisterRoutes(api, authhttp.NewHandler(app.Auth, app.Log), authhttp.RouteOptions{
		Gate:            app.Gate,
		LoginLimiter:    app.Limiters.Login,
		RegisterLimiter: app.Limiters.Register,
		RequestTimeout:  app.Config.RequestTimeout,
	})
	taskhttp.RegisterRoutes(api, taskhttp.NewHandler(app.Tasks, app.Log), app.Gate, app.Config.RequestTimeout)

	return router
}
