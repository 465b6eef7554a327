package main

import (
	"log"
	"os"

	"assettrack-backend/controllers"
	"assettrack-backend/models"
	"assettrack-backend/routes"
	"assettrack-backend/services"
	"assettrack-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	db, err := models.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AssetType{},
		&models.AssetBrand{},
		&models.Asset{},
		&models.AssetImage{},
		&models.AssetDocument{},
		&models.AssetHistory{},
		&models.StockEntry{},
		&models.StockIssue{},
	); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	defaultActor := os.Getenv("DEFAULT_ACTOR")
	if defaultActor == "" {
		defaultActor = "System Admin"
	}
	initDefaultUsers(db, defaultActor)

	// Over-issuing stock is permitted unless explicitly disabled.
	allowOverissue := os.Getenv("STOCK_ALLOW_OVERISSUE") != "false"

	app := fiber.New(fiber.Config{
		// 50 MB covers the fully buffered attachment uploads
		BodyLimit: 50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Wire the core services
	refs := services.NewReferenceService()
	attachments := services.NewAttachmentService()
	history := services.NewHistoryService()
	assetService := services.NewAssetService(db, refs, attachments, history, defaultActor)
	stockService := services.NewStockService(db, refs, attachments, defaultActor, allowOverissue)

	assetController := controllers.NewAssetController(db, assetService, attachments)
	stockController := controllers.NewStockController(db, stockService)

	routes.SetupAssetRoutes(app, assetController)
	routes.SetupStockRoutes(app, stockController)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "AssetTrack backend is running",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	utils.GetLogger().WithField("port", port).Info("server starting")
	log.Fatal(app.Listen(":" + port))
}

// initDefaultUsers seeds the fallback actor and an admin account on an
// empty users table. The password only backs the external login flow.
func initDefaultUsers(db *gorm.DB, defaultActor string) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	defaultUsers := []models.User{
		{Username: "system-admin", FullName: defaultActor, Role: "system"},
		{Username: "admin", FullName: "Administrator", Email: "admin@localhost", PasswordHash: string(hash), Role: "admin"},
	}
	for _, user := range defaultUsers {
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %q: %v", user.Username, err)
		} else {
			log.Printf("Seeded user: %s", user.Username)
		}
	}
}
