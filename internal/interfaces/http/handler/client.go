package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientapp "github.com/invoicer/backend/internal/application/client"
	taskapp "github.com/invoicer/backend/internal/application/task"
	"github.com/invoicer/backend/internal/domain/shared"
)

// ClientService is the client use-case surface the handler needs
type ClientService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req clientapp.CreateClientRequest) (*clientapp.ClientResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter clientapp.ClientListFilter) ([]clientapp.ClientResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req clientapp.UpdateClientRequest) (*clientapp.ClientResponse, error)
	Archive(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error)
	Remove(ctx context.Context, tenantID, id uuid.UUID) error
}

// UnbilledTaskLister lists the tasks of a client not yet on an invoice
type UnbilledTaskLister interface {
	GetUnbilledByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]taskapp.TaskResponse, error)
}

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clients  ClientService
	unbilled UnbilledTaskLister
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients ClientService, unbilled UnbilledTaskLister) *ClientHandler {
	return &ClientHandler{clients: clients, unbilled: unbilled}
}

// List handles GET /clients
//
// @ID           listClients
// @Summary      List clients
// @Description  Page through the tenant's clients, optionally filtered by name or email and status
// @Tags         clients
// @Produce      json
// @Param        search query string false "Match on name or email"
// @Param        status query string false "active or inactive"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Items per page (max 100)"
// @Param        order_by query string false "Sort column"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]clientapp.ClientResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var filter clientapp.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	clients, total, err := h.clients.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, clients, total, page.Page, page.PageSize)
}

// Create handles POST /clients
//
// @ID           createClient
// @Summary      Create a client
// @Description  Create a client. The email must not belong to another active client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body clientapp.CreateClientRequest true "Client to create"
// @Success      201 {object} dto.Response{data=clientapp.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req clientapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.clients.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetByID handles GET /clients/:id
//
// @ID           getClient
// @Summary      Get a client
// @Description  Retrieve a client by ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=clientapp.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := h.scope(c)
	if !ok {
		return
	}

	found, err := h.clients.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}

// Update handles PUT /clients/:id
//
// @ID           updateClient
// @Summary      Update a client
// @Description  Replace the editable fields of a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body clientapp.UpdateClientRequest true "Client fields"
// @Success      200 {object} dto.Response{data=clientapp.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	tenantID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req clientapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.clients.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// Archive handles POST /clients/:id/archive
//
// @ID           archiveClient
// @Summary      Archive a client
// @Description  Mark a client inactive. Its tasks and invoices are kept
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=clientapp.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients/{id}/archive [post]
func (h *ClientHandler) Archive(c *gin.Context) {
	tenantID, id, ok := h.scope(c)
	if !ok {
		return
	}

	archived, err := h.clients.Archive(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, archived)
}

// Remove handles DELETE /clients/:id
//
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Delete a client without tasks or invoices
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Remove(c *gin.Context) {
	tenantID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.clients.Remove(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnbilledTasks handles GET /clients/:id/unbilled-tasks
//
// @ID           listUnbilledTasks
// @Summary      List unbilled tasks
// @Description  List the client's tasks that are not on an invoice yet
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]taskapp.TaskResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /clients/{id}/unbilled-tasks [get]
func (h *ClientHandler) UnbilledTasks(c *gin.Context) {
	tenantID, id, ok := h.scope(c)
	if !ok {
		return
	}

	tasks, err := h.unbilled.GetUnbilledByClient(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

func (h *ClientHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	return resolveScope(&h.BaseHandler, c)
}

// resolveScope reads the tenant and the :id path parameter, answering the
// request itself when either is missing
func resolveScope(h *BaseHandler, c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}
