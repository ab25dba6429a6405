package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/nordiqua-api/internal/application/analytics"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/billing"
	"github.com/jhoicas/nordiqua-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ClientUC    *billing.ClientUseCase
	InvoiceUC   *billing.InvoiceUseCase
	InvoicePDF  *billing.PDFUseCase
	InvoiceUBL  *billing.UBLUseCase
	ProductUC   *usecase.ProductUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Users       UserLookup
	Validator   *Validator
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validator := deps.Validator
	if validator == nil {
		validator = MustValidator()
	}
	gate := AuthMiddleware(deps.JWTSecret, deps.Users, deps.Log)

	api := app.Group("/api")

	// Auth: login y registro públicos; perfil protegido
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, validator)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", gate, authHandler.Me)
	authGroup.Patch("/profile", gate, authHandler.UpdateProfile)

	// Clients (protegido)
	clients := api.Group("/clients", gate)
	clientHandler := NewClientHandler(deps.ClientUC, validator)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Create)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Invoices (protegido)
	invoices := api.Group("/invoices", gate)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF, deps.InvoiceUBL, validator)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Get("/:id/ubl", invoiceHandler.ExportUBL)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)

	// Products (protegido)
	products := api.Group("/products", gate)
	productHandler := NewProductHandler(deps.ProductUC, validator)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Dashboard (protegido)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/summary", gate, dashboardHandler.GetSummary)

	// Admin (protegido + rol admin)
	admin := api.Group("/admin", gate, RequireAdmin())
	adminHandler := NewAdminHandler(deps.UserUC, validator)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/role", adminHandler.UpdateRole)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
}
