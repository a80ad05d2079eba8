package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupInvoiceRouter(tenantID uuid.UUID) (*gin.Engine, *MockInvoiceService) {
	invoices := new(MockInvoiceService)
	h := NewInvoiceHandler(invoices)

	r := newTestEngine(tenantID)
	r.GET("/invoices", h.List)
	r.POST("/invoices", h.Create)
	r.GET("/invoices/:id", h.GetByID)
	r.PUT("/invoices/:id", h.Update)
	r.PATCH("/invoices/:id/status", h.UpdateStatus)
	r.POST("/invoices/:id/send", h.Send)
	r.POST("/invoices/:id/paid", h.MarkAsPaid)
	r.DELETE("/invoices/:id", h.Delete)
	r.GET("/invoices/:id/pdf", h.DownloadPDF)
	return r, invoices
}

func TestInvoiceHandler_Create(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	taskIDs := []uuid.UUID{uuid.New(), uuid.New()}

	t.Run("created", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("Create", mock.Anything, tenantID, mock.MatchedBy(func(req invoiceapp.CreateInvoiceRequest) bool {
			return req.ClientID == clientID && len(req.TaskIDs) == 2 && req.Tax.Equal(decimal.NewFromInt(20))
		})).Return(&invoiceapp.InvoiceResponse{
			ID:     uuid.New(),
			Number: "INV-000001",
			Total:  decimal.NewFromInt(600),
			Status: "draft",
		}, nil)

		w := doJSON(r, http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID, "task_ids": taskIDs, "date": "2024-07-01", "tax": 20,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, "INV-000001", data["number"])
		assert.Equal(t, "600", data["total"])
	})

	t.Run("needs at least one task", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)

		w := doJSON(r, http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID, "task_ids": []uuid.UUID{}, "date": "2024-07-01",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
		invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("task already billed", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("Create", mock.Anything, tenantID, mock.Anything).
			Return(nil, fmt.Errorf("claim tasks: %w", invoice.ErrTaskAlreadyInvoiced))

		w := doJSON(r, http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID, "task_ids": taskIDs, "date": "2024-07-01",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVOICE_TASK_ALREADY_INVOICED", decode(t, w).Error.Reason)
	})
}

func TestInvoiceHandler_List(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	r, invoices := setupInvoiceRouter(tenantID)
	invoices.On("List", mock.Anything, tenantID, invoiceapp.InvoiceListFilter{ClientID: clientID.String(), Status: "sent"}).
		Return([]invoiceapp.InvoiceResponse{{Number: "INV-000003", Status: "sent"}}, int64(1), nil)

	w := doJSON(r, http.MethodGet, "/invoices?client_id="+clientID.String()+"&status=sent", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)

	t.Run("unknown status", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/invoices?status=void", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_StatusEndpoints(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()

	t.Run("patch status", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("UpdateStatus", mock.Anything, tenantID, id, "sent").
			Return(&invoiceapp.InvoiceResponse{ID: id, Status: "sent"}, nil)

		w := doJSON(r, http.MethodPatch, "/invoices/"+id.String()+"/status", map[string]string{"status": "sent"})

		assert.Equal(t, http.StatusOK, w.Code)
		invoices.AssertExpectations(t)
	})

	t.Run("patch status rejects unknown value", func(t *testing.T) {
		r, _ := setupInvoiceRouter(tenantID)

		w := doJSON(r, http.MethodPatch, "/invoices/"+id.String()+"/status", map[string]string{"status": "void"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("paid is terminal", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("UpdateStatus", mock.Anything, tenantID, id, "draft").Return(nil, invoice.ErrInvalidTransition)

		w := doJSON(r, http.MethodPatch, "/invoices/"+id.String()+"/status", map[string]string{"status": "draft"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("mark as paid", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("MarkAsPaid", mock.Anything, tenantID, id).
			Return(&invoiceapp.InvoiceResponse{ID: id, Status: "paid"}, nil)

		w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/paid", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "paid", decode(t, w).Data.(map[string]any)["status"])
	})
}

func TestInvoiceHandler_Update(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()
	r, invoices := setupInvoiceRouter(tenantID)
	invoices.On("Update", mock.Anything, tenantID, id, mock.Anything).Return(nil, invoice.ErrInvoicePaid)

	w := doJSON(r, http.MethodPut, "/invoices/"+id.String(), map[string]any{"notes": "Net 30"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVOICE_PAID", decode(t, w).Error.Reason)
}

func TestInvoiceHandler_Send(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()

	t.Run("sent", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("Send", mock.Anything, tenantID, id, invoiceapp.SendInvoiceRequest{
			RecipientEmail: "ap@acme.test", RecipientName: "Accounts Payable",
		}).Return(&invoiceapp.InvoiceResponse{ID: id, Status: "sent"}, nil)

		w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/send", map[string]string{
			"recipient_email": "ap@acme.test", "recipient_name": "Accounts Payable",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		invoices.AssertExpectations(t)
	})

	t.Run("recipient required", func(t *testing.T) {
		r, _ := setupInvoiceRouter(tenantID)

		w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/send", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already sending", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("Send", mock.Anything, tenantID, id, mock.Anything).Return(nil, invoice.ErrSendInProgress)

		w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/send", map[string]string{"recipient_email": "ap@acme.test"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVOICE_SEND_IN_PROGRESS", decode(t, w).Error.Reason)
	})

	t.Run("mail failure is a server error", func(t *testing.T) {
		r, invoices := setupInvoiceRouter(tenantID)
		invoices.On("Send", mock.Anything, tenantID, id, mock.Anything).Return(nil, errors.New("send invoice mail: dial tcp: timeout"))

		w := doJSON(r, http.MethodPost, "/invoices/"+id.String()+"/send", map[string]string{"recipient_email": "ap@acme.test"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decode(t, w).Error.Code)
	})
}

func TestInvoiceHandler_Delete(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()
	r, invoices := setupInvoiceRouter(tenantID)
	invoices.On("Delete", mock.Anything, tenantID, id).Return(nil)

	w := doJSON(r, http.MethodDelete, "/invoices/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)

	t.Run("missing", func(t *testing.T) {
		other := uuid.New()
		invoices.On("Delete", mock.Anything, tenantID, other).Return(invoice.ErrInvoiceNotFound)

		w := doJSON(r, http.MethodDelete, "/invoices/"+other.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()
	pdf := []byte("%PDF-1.7 fake")
	r, invoices := setupInvoiceRouter(tenantID)
	invoices.On("RenderPDF", mock.Anything, tenantID, id).Return(pdf, "INV-000004.pdf", nil)

	t.Run("attachment", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/invoices/"+id.String()+"/pdf", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="INV-000004.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, pdf, w.Body.Bytes())
	})

	t.Run("inline", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/invoices/"+id.String()+"/pdf?inline=true", nil)

		assert.Equal(t, `inline; filename="INV-000004.pdf"`, w.Header().Get("Content-Disposition"))
	})
}
