package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-caja/internal/application/catalog"
	"github.com/tu-usuario/pos-caja/internal/application/inventory"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *catalog.UseCase
	InventoryUC *inventory.UseCase
	RegisterUC  *register.UseCase
	CreateSale  *pos.CreateSaleUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con rol de operación)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole("admin", "cajero"))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/stock", inventoryHandler.GetStock)
	invGroup.Get("/reconcile", inventoryHandler.Reconcile)

	// Register sessions (protegido)
	sessions := protected.Group("/register/sessions")
	registerHandler := NewRegisterHandler(deps.RegisterUC)
	sessions.Post("/", registerHandler.Open)
	sessions.Get("/", registerHandler.List)
	sessions.Get("/:id", registerHandler.GetByID)
	sessions.Post("/:id/close", registerHandler.Close)
	sessions.Post("/:id/entries", registerHandler.AppendEntry)
	sessions.Get("/:id/summary", registerHandler.Summary)

	// POS (protegido)
	posGroup := protected.Group("/pos")
	posHandler := NewPOSHandler(deps.CreateSale)
	posGroup.Post("/sales", posHandler.CreateSale)
	posGroup.Get("/sales/:id", posHandler.GetSale)
}
