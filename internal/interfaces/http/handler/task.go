package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	taskapp "github.com/invoicer/backend/internal/application/task"
	"github.com/invoicer/backend/internal/domain/shared"
)

// TaskService is the task use-case surface the handler needs
type TaskService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req taskapp.CreateTaskRequest) (*taskapp.TaskResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*taskapp.TaskResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter taskapp.TaskListFilter) ([]taskapp.TaskResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req taskapp.UpdateTaskRequest) (*taskapp.TaskResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]taskapp.TaskResponse, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*taskapp.DashboardStats, error)
}

// TaskHandler handles task and dashboard endpoints
type TaskHandler struct {
	BaseHandler
	tasks TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks
//
// @ID           listTasks
// @Summary      List tasks
// @Description  Page through tasks with optional client, status, billing and date filters
// @Tags         tasks
// @Produce      json
// @Param        search query string false "Match on description"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        status query string false "pending, in-progress or completed"
// @Param        invoiced query boolean false "Billed or unbilled only"
// @Param        date_from query string false "Earliest work date (YYYY-MM-DD)" format(date)
// @Param        date_to query string false "Latest work date (YYYY-MM-DD)" format(date)
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Items per page (max 100)"
// @Param        order_by query string false "Sort column"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]taskapp.TaskResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var filter taskapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, tasks, total, page.Page, page.PageSize)
}

// Recent handles GET /tasks/recent?limit=n
//
// @ID           listRecentTasks
// @Summary      List recent tasks
// @Description  Most recently worked tasks, newest first
// @Tags         tasks
// @Produce      json
// @Param        limit query integer false "Number of tasks"
// @Success      200 {object} dto.Response{data=[]taskapp.TaskResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks/recent [get]
func (h *TaskHandler) Recent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			h.HandleError(c, shared.NewValidationError("INVALID_LIMIT", "limit must be a positive integer"))
			return
		}
	}

	tasks, err := h.tasks.GetRecent(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// Create handles POST /tasks
//
// @ID           createTask
// @Summary      Log a task
// @Description  Log work for a client. The hourly rate defaults to the client's rate
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body taskapp.CreateTaskRequest true "Task to log"
// @Success      201 {object} dto.Response{data=taskapp.TaskResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req taskapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.tasks.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetByID handles GET /tasks/:id
//
// @ID           getTask
// @Summary      Get a task
// @Description  Retrieve a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID" format(uuid)
// @Success      200 {object} dto.Response{data=taskapp.TaskResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	found, err := h.tasks.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}

// Update handles PUT /tasks/:id
//
// @ID           updateTask
// @Summary      Update a task
// @Description  Change a task. Invoiced tasks only accept a status change
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID" format(uuid)
// @Param        request body taskapp.UpdateTaskRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=taskapp.TaskResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	var req taskapp.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.tasks.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Delete handles DELETE /tasks/:id
//
// @ID           deleteTask
// @Summary      Delete a task
// @Description  Delete a task that is not on an invoice
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DashboardStats handles GET /dashboard/stats
//
// @ID           getDashboardStats
// @Summary      Dashboard statistics
// @Description  Unbilled work, outstanding invoices and counts for the tenant
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=taskapp.DashboardStats}
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *TaskHandler) DashboardStats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stats, err := h.tasks.GetDashboardStats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
