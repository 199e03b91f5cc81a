package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"maildraft/config"
	controller "maildraft/controllers"
	"maildraft/middleware"
	"maildraft/storage"
	"maildraft/utils"
)

// SetupRoutes wires components together and registers every endpoint.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	store := storage.NewDraftStore(db)
	generator := utils.NewEmailGenerator(cfg)
	mailer := utils.NewMailer(cfg)

	draftController := controller.NewDraftController(store, generator, mailer,
		log.New(os.Stdout, "DRAFT: ", log.LstdFlags))
	statsController := controller.NewStatsController(store,
		log.New(os.Stdout, "STATS: ", log.LstdFlags))
	settingsController := controller.NewSettingsController(cfg)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	api.Post("/generate", middleware.GenerateRateLimiter(cfg), draftController.Generate)
	api.Post("/send/:id", draftController.SendDraft)

	api.Get("/emails", draftController.GetEmails)
	api.Get("/emails/:id", draftController.GetEmail)
	api.Put("/emails/:id", draftController.UpdateDraft)
	api.Delete("/emails/:id", draftController.DeleteEmail)

	api.Get("/stats", statsController.GetStats)
	api.Get("/settings/smtp", settingsController.GetSMTPSettings)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
}
