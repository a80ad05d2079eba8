package router

import (
	"github.com/invoicer/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint sets served under /api/{version}
type Handlers struct {
	Clients  *handler.ClientHandler
	Tasks    *handler.TaskHandler
	Invoices *handler.InvoiceHandler
	Profile  *handler.ProfileHandler
}

// BillingGroups maps the billing endpoints onto their domain groups
func BillingGroups(h Handlers) []RouteRegistrar {
	clients := NewDomainGroup("clients", "/clients").
		GET("", h.Clients.List).
		POST("", h.Clients.Create).
		GET("/:id", h.Clients.GetByID).
		PUT("/:id", h.Clients.Update).
		DELETE("/:id", h.Clients.Remove).
		POST("/:id/archive", h.Clients.Archive).
		GET("/:id/unbilled-tasks", h.Clients.UnbilledTasks)

	tasks := NewDomainGroup("tasks", "/tasks").
		GET("", h.Tasks.List).
		GET("/recent", h.Tasks.Recent).
		POST("", h.Tasks.Create).
		GET("/:id", h.Tasks.GetByID).
		PUT("/:id", h.Tasks.Update).
		DELETE("/:id", h.Tasks.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard").
		GET("/stats", h.Tasks.DashboardStats)

	invoices := NewDomainGroup("invoices", "/invoices").
		GET("", h.Invoices.List).
		POST("", h.Invoices.Create).
		GET("/:id", h.Invoices.GetByID).
		PUT("/:id", h.Invoices.Update).
		DELETE("/:id", h.Invoices.Delete).
		PATCH("/:id/status", h.Invoices.UpdateStatus).
		POST("/:id/send", h.Invoices.Send).
		POST("/:id/paid", h.Invoices.MarkAsPaid).
		GET("/:id/pdf", h.Invoices.DownloadPDF)

	profile := NewDomainGroup("profile", "/profile").
		GET("", h.Profile.Get).
		PUT("", h.Profile.Update).
		POST("/logo", h.Profile.UploadLogo)

	return []RouteRegistrar{clients, tasks, dashboard, invoices, profile}
}
