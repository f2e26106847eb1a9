package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "contracthub/controllers"
	"contracthub/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints, throttled per IP
	auth.Post("/register", middleware.LoginRateLimiter(), controller.Register)
	auth.Post("/login", middleware.LoginRateLimiter(), controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	contractController := controller.NewContractController(db, log.New(os.Stdout, "CONTRACT: ", log.LstdFlags))
	paymentController := controller.NewPaymentController(db, log.New(os.Stdout, "PAYMENT: ", log.LstdFlags))
	personController := controller.NewPersonController(db, log.New(os.Stdout, "PERSON: ", log.LstdFlags))
	reportController := controller.NewReportController(db, log.New(os.Stdout, "REPORT: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes. Roles and assignments are registered before the :id
	// routes so "/teams/roles" does not match as an id.
	team := api.Group("/teams")
	team.Get("/roles", teamController.GetTeamRoles)
	team.Post("/roles", teamController.CreateTeamRole)
	team.Post("/assignments", teamController.CreateAssignment)
	team.Delete("/assignments/:id", teamController.DeleteAssignment)
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)

	// Contract routes
	contract := api.Group("/contracts")
	contract.Post("/", contractController.CreateContract)
	contract.Get("/", contractController.GetContracts)
	contract.Get("/:id", contractController.GetContract)
	contract.Put("/:id", contractController.UpdateContract)
	contract.Delete("/:id", contractController.DeleteContract)

	// Payments and rates hang off their owning contract
	contract.Get("/:id/payments", paymentController.GetPayments)
	contract.Post("/:id/payments", paymentController.CreatePayment)
	contract.Get("/:id/rates", paymentController.GetRates)
	contract.Post("/:id/rates", paymentController.CreateRate)
	api.Delete("/payments/:id", paymentController.DeletePayment)
	api.Delete("/rates/:id", paymentController.DeleteRate)

	// People routes
	person := api.Group("/people")
	person.Post("/", personController.CreatePerson)
	person.Get("/", personController.GetPeople)
	person.Get("/:id", personController.GetPerson)
	person.Put("/:id", personController.UpdatePerson)
	person.Delete("/:id", personController.DeletePerson)

	// Report routes
	report := api.Group("/reports")
	report.Get("/summary", reportController.GetSummary)
	report.Get("/local-authorities", reportController.GetLocalAuthorities)
	report.Get("/status-issues", reportController.GetStatusIssues)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetStats)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
