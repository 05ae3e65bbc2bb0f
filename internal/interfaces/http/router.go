package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/order"
	"github.com/jhoicas/Suministros-api/internal/application/reconciliation"
	"github.com/jhoicas/Suministros-api/internal/application/report"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *usecase.ProductUseCase
	SupplierUC     *usecase.SupplierUseCase
	Ledger         *inventory.Ledger
	Replenishment  *inventory.ReplenishmentUseCase
	Orders         *order.Service
	Reconciliation *reconciliation.Engine
	Reports        *report.Service
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(RoleAdmin, RoleCompras)
	anyone := RequireRole(RoleAdmin, RoleCompras, RoleSolicitante)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyone, productHandler.List)
	products.Get("/pending", staff, productHandler.Pending)
	products.Get("/:id", anyone, productHandler.GetByID)
	products.Post("/", staff, productHandler.Create)
	products.Put("/:id", staff, productHandler.Complete)
	products.Delete("/:id", RequireRole(RoleAdmin), productHandler.Deactivate)

	suppliers := protected.Group("/suppliers", staff)
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)

	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, deps.Replenishment)
	stock.Get("/balances", anyone, stockHandler.Balances)
	stock.Get("/balances/:productId", anyone, stockHandler.Balance)
	stock.Get("/movements", staff, stockHandler.Movements)
	stock.Get("/alerts", staff, stockHandler.Alerts)
	stock.Post("/in", staff, stockHandler.In)
	stock.Post("/out", staff, stockHandler.Out)
	stock.Post("/adjust", staff, stockHandler.Adjust)

	orders := protected.Group("/orders", anyone)
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/pdf", orderHandler.PDF)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Patch("/:id/status", staff, orderHandler.UpdateStatus)
	orders.Post("/:id/retry-stock", staff, orderHandler.RetryStock)

	invoices := protected.Group("/invoices", staff)
	invoiceHandler := NewInvoiceHandler(deps.Reconciliation)
	invoices.Post("/", invoiceHandler.Upload)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/process", invoiceHandler.Process)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	reports := protected.Group("/reports", staff)
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/:kind", reportHandler.Export)
}
