package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

// InvoiceService is the invoice use-case surface the handler needs
type InvoiceService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter invoiceapp.InvoiceListFilter) ([]invoiceapp.InvoiceResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.UpdateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*invoiceapp.InvoiceResponse, error)
	MarkAsPaid(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	Send(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.SendInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	RenderPDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// List handles GET /invoices
//
// @ID           listInvoices
// @Summary      List invoices
// @Description  Page through invoices, optionally by client and status
// @Tags         invoices
// @Produce      json
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        status query string false "draft, sent or paid"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Items per page (max 100)"
// @Param        order_by query string false "Sort column"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]invoiceapp.InvoiceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var filter invoiceapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	invoices, total, err := h.invoices.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, invoices, total, page.Page, page.PageSize)
}

// Create handles POST /invoices
//
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Bill unbilled tasks of one client. The tasks are claimed atomically
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.CreateInvoiceRequest true "Invoice to create"
// @Success      201 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req invoiceapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.invoices.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetByID handles GET /invoices/:id
//
// @ID           getInvoice
// @Summary      Get an invoice
// @Description  Retrieve an invoice with its lines
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	found, err := h.invoices.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}

// Update handles PUT /invoices/:id
//
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  Change dates, tax, notes or status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.UpdateInvoiceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	var req invoiceapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.invoices.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// UpdateStatus handles PATCH /invoices/:id/status
//
// @ID           updateInvoiceStatus
// @Summary      Change invoice status
// @Description  Move an invoice between draft, sent and paid
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	var req invoiceapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.invoices.UpdateStatus(c.Request.Context(), tenantID, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// MarkAsPaid handles POST /invoices/:id/paid
//
// @ID           markInvoicePaid
// @Summary      Mark an invoice paid
// @Description  Record payment of an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/paid [post]
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	paid, err := h.invoices.MarkAsPaid(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, paid)
}

// Send handles POST /invoices/:id/send
//
// @ID           sendInvoice
// @Summary      Email an invoice
// @Description  Render the PDF, mail it to the recipient and mark the invoice sent. A concurrent send of the same invoice answers 409
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.SendInvoiceRequest true "Recipient"
// @Success      200 {object} dto.Response{data=invoiceapp.InvoiceResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	var req invoiceapp.SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sent, err := h.invoices.Send(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sent)
}

// Delete handles DELETE /invoices/:id
//
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Delete an invoice and release its tasks
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DownloadPDF handles GET /invoices/:id/pdf
//
// @ID           downloadInvoicePdf
// @Summary      Download invoice PDF
// @Description  Render the invoice as a PDF document
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        inline query boolean false "Display in the browser instead of downloading"
// @Success      200 {file} file "PDF document"
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	tenantID, id, ok := resolveScope(&h.BaseHandler, c)
	if !ok {
		return
	}

	data, filename, err := h.invoices.RenderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "attachment"
	if c.Query("inline") == "true" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+"; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}
