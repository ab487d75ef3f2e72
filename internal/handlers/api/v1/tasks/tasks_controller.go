// ===============================
// FILE: internal/handlers/api/v1/tasks/tasks_controller.go
// ===============================

package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"allowancehub/internal/response"
	"allowancehub/internal/services"
	"allowancehub/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskController handles task API endpoints
type TaskController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewTaskController creates a new task controller
func NewTaskController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *TaskController {
	return &TaskController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// ListTasks handles GET /api/v1/users/{userID}/tasks
func (c *TaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	resp, err := c.serviceCollection.TaskService.ListTasks(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, resp)
}

// CreateTask handles POST /api/v1/users/{userID}/tasks
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create task request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	task, err := c.serviceCollection.TaskService.CreateTask(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, task)
}

// ToggleTask handles PATCH /api/v1/users/{userID}/tasks/{taskID}/toggle
func (c *TaskController) ToggleTask(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.ToggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode toggle task request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID
	req.TaskID = taskID

	task, err := c.serviceCollection.TaskService.ToggleTask(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, task)
}

// DeleteTask handles DELETE /api/v1/users/{userID}/tasks/{taskID}
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := c.serviceCollection.TaskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// pathID extracts a numeric route variable
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
