package routes

import (
	"assettrack-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupStockRoutes registers the stock collection endpoints
func SetupStockRoutes(app *fiber.App, stockController *controllers.StockController) {
	stocks := app.Group("/api/stocks")

	// GET /api/stocks - filtered, paginated list
	stocks.Get("/", stockController.GetStocks)

	// POST /api/stocks - create (multipart with optional bill)
	stocks.Post("/", stockController.CreateStock)

	// GET /api/stocks/:id - detail with derived current stock
	stocks.Get("/:id", stockController.GetStock)

	// PUT /api/stocks/:id - full scalar replace, bill replace/clear
	stocks.Put("/:id", stockController.UpdateStock)

	// DELETE /api/stocks/:id - remove entry, issuances and bill
	stocks.Delete("/:id", stockController.DeleteStock)

	// POST /api/stocks/:id/issues - append an issuance row
	stocks.Post("/:id/issues", stockController.IssueStock)

	// GET /api/stocks/:id/bill - bill payload download
	stocks.Get("/:id/bill", stockController.DownloadStockBill)
}
