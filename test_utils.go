package main

import (
	"assettrack-backend/controllers"
	"assettrack-backend/models"
	"assettrack-backend/routes"
	"assettrack-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory test database
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("Failed to connect to test database")
	}

	// A single connection keeps every statement on the same in-memory
	// database.
	sqlDB, err := db.DB()
	if err != nil {
		panic("Failed to access test database pool")
	}
	sqlDB.SetMaxOpenConns(1)

	db.AutoMigrate(
		&models.User{},
		&models.AssetType{},
		&models.AssetBrand{},
		&models.Asset{},
		&models.AssetImage{},
		&models.AssetDocument{},
		&models.AssetHistory{},
		&models.StockEntry{},
		&models.StockIssue{},
	)
	return db
}

// newTestAssetService wires an asset service against the test database
func newTestAssetService(db *gorm.DB) *services.AssetService {
	refs := services.NewReferenceService()
	attachments := services.NewAttachmentService()
	history := services.NewHistoryService()
	return services.NewAssetService(db, refs, attachments, history, "System Admin")
}

// newTestStockService wires a stock service against the test database
func newTestStockService(db *gorm.DB, allowOverissue bool) *services.StockService {
	refs := services.NewReferenceService()
	attachments := services.NewAttachmentService()
	return services.NewStockService(db, refs, attachments, "System Admin", allowOverissue)
}

// createTestApp builds a Fiber application with the API routes
func createTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New()

	attachments := services.NewAttachmentService()
	assetController := controllers.NewAssetController(db, newTestAssetService(db), attachments)
	stockController := controllers.NewStockController(db, newTestStockService(db, true))

	routes.SetupAssetRoutes(app, assetController)
	routes.SetupStockRoutes(app, stockController)

	return app
}

// validAssetInput returns a minimal valid create input
func validAssetInput() services.AssetInput {
	return services.AssetInput{
		TypeName:  "Laptop",
		BrandName: "Dell",
		ModelName: "Latitude",
		Status:    models.StatusInStock,
	}
}

// validStockInput returns a minimal valid stock entry input
func validStockInput() services.StockInput {
	return services.StockInput{
		ProductName: "Bolts",
		Category:    "Hardware",
		Supplier:    "Acme Supplies",
		Quantity:    "100",
		Unit:        "Pieces",
		Warehouse:   "Main",
	}
}
