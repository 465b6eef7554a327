package routes

import (
	"assettrack-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupAssetRoutes registers the asset collection endpoints
func SetupAssetRoutes(app *fiber.App, assetController *controllers.AssetController) {
	assets := app.Group("/api/assets")

	// GET /api/assets - filtered, paginated list
	assets.Get("/", assetController.GetAssets)

	// POST /api/assets - create (multipart with optional images/document)
	assets.Post("/", assetController.CreateAsset)

	// GET /api/assets/export - XLSX of the full filtered list
	// (must be registered before the parameterized routes)
	assets.Get("/export", assetController.ExportAssets)

	// GET /api/assets/:id - detail with attachments metadata and history
	assets.Get("/:id", assetController.GetAsset)

	// PUT /api/assets/:id - full scalar replace
	assets.Put("/:id", assetController.UpdateAsset)

	// DELETE /api/assets/:id - remove asset and attachments
	assets.Delete("/:id", assetController.DeleteAsset)

	// GET /api/assets/:id/history - audit trail, newest first
	assets.Get("/:id/history", assetController.GetAssetHistory)

	// GET /api/assets/:id/images/:imageId - image payload download
	assets.Get("/:id/images/:imageId", assetController.DownloadAssetImage)

	// GET /api/assets/:id/document - active document download
	assets.Get("/:id/document", assetController.DownloadAssetDocument)
}
