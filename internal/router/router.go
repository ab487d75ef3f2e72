// file: internal/router/router.go
package router

import (
	"net/http"

	"allowancehub/internal/handlers/api/v1/badges"
	"allowancehub/internal/handlers/api/v1/goals"
	"allowancehub/internal/handlers/api/v1/tasks"
	"allowancehub/internal/handlers/api/v1/transactions"
	"allowancehub/internal/handlers/api/v1/users"
	"allowancehub/internal/handlers/ws"
	"allowancehub/internal/middleware"
	"allowancehub/internal/response"
	"allowancehub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Config carries router-level options
type Config struct {
	CORSOrigin string
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	hub *ws.Hub,
	responseBuilder *response.Builder,
	httpMetrics *middleware.HTTPMetrics,
	cfg Config,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Controllers
	userController := users.NewUserController(serviceCollection, logger, responseBuilder)
	taskController := tasks.NewTaskController(serviceCollection, logger, responseBuilder)
	goalController := goals.NewGoalController(serviceCollection, logger, responseBuilder)
	transactionController := transactions.NewTransactionController(serviceCollection, logger, responseBuilder)
	badgeController := badges.NewBadgeController(serviceCollection, logger, responseBuilder)
	wsHandler := ws.NewHandler(hub, serviceCollection, logger)

	// Operational endpoints
	r.HandleFunc("/health", healthHandler(serviceCollection, responseBuilder)).Methods(http.MethodGet)
	r.HandleFunc("/metrics", metricsHandler(serviceCollection, httpMetrics, responseBuilder)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Users
	api.HandleFunc("/users", userController.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", userController.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}", userController.GetUser).Methods(http.MethodGet)

	// Badges
	api.HandleFunc("/badges", badgeController.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/badges", badgeController.GetUserBadges).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/badges/progress", badgeController.ApplyProgress).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}/badges", badgeController.ResetProgress).Methods(http.MethodDelete)

	// Tasks
	api.HandleFunc("/users/{userID:[0-9]+}/tasks", taskController.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/tasks", taskController.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}/tasks/{taskID:[0-9]+}/toggle", taskController.ToggleTask).Methods(http.MethodPatch)
	api.HandleFunc("/users/{userID:[0-9]+}/tasks/{taskID:[0-9]+}", taskController.DeleteTask).Methods(http.MethodDelete)

	// Goals
	api.HandleFunc("/users/{userID:[0-9]+}/goals", goalController.ListGoals).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/goals", goalController.CreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}/goals/{goalID:[0-9]+}/funds", goalController.AddFunds).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}/goals/{goalID:[0-9]+}", goalController.DeleteGoal).Methods(http.MethodDelete)

	// Transactions
	api.HandleFunc("/users/{userID:[0-9]+}/transactions", transactionController.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/transactions", transactionController.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID:[0-9]+}/transactions/{transactionID:[0-9]+}", transactionController.DeleteTransaction).Methods(http.MethodDelete)

	// Celebration stream
	api.HandleFunc("/users/{userID:[0-9]+}/ws", wsHandler.ServeWS).Methods(http.MethodGet)

	// Middleware chain, outermost first
	var handler http.Handler = r
	handler = middleware.Logging(logger)(handler)
	handler = httpMetrics.Middleware()(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(logger)(handler)

	return handler
}

// healthHandler reports dependency health
func healthHandler(sc *services.ServiceCollection, builder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sc.Health(r.Context()); err != nil {
			builder.WriteJSON(w, r, builder.Error(r.Context(), services.NewInternalError(err.Error())), http.StatusServiceUnavailable)
			return
		}
		builder.WriteSuccess(w, r, map[string]string{"status": "ok"})
	}
}

// metricsHandler exposes HTTP, database and event bus counters
func metricsHandler(sc *services.ServiceCollection, httpMetrics *middleware.HTTPMetrics, builder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		builder.WriteSuccess(w, r, map[string]interface{}{
			"http":     httpMetrics.Snapshot(),
			"database": sc.DBManager.Metrics(),
			"events":   sc.EventBus.Stats(),
		})
	}
}
