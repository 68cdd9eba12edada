package main

import (
	"log"
	"os"
	"time"

	"matchpanel/database"
	"matchpanel/handlers"
	"matchpanel/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	database.InitDB()

	handlers.InitHandlers()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// Auth routes with stricter rate limiting
	authGroup := app.Group("/api/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.Me)

	// Team routes
	app.Get("/api/teams", middleware.AuthMiddleware, handlers.ListTeams)
	app.Post("/api/teams", middleware.AuthMiddleware, handlers.CreateTeam)
	app.Get("/api/teams/:id", handlers.GetTeam)
	app.Put("/api/teams/:id", middleware.AuthMiddleware, handlers.UpdateTeam)
	app.Delete("/api/teams/:id", middleware.AuthMiddleware, handlers.DeleteTeam)

	// Game server routes
	app.Get("/api/servers", middleware.AuthMiddleware, handlers.ListServers)
	app.Post("/api/servers", middleware.AuthMiddleware, handlers.CreateServer)
	app.Get("/api/servers/:id", middleware.AuthMiddleware, handlers.GetServer)
	app.Put("/api/servers/:id", middleware.AuthMiddleware, handlers.UpdateServer)
	app.Delete("/api/servers/:id", middleware.AuthMiddleware, handlers.DeleteServer)

	// Season routes
	app.Get("/api/seasons", handlers.ListSeasons)
	app.Post("/api/seasons", middleware.AuthMiddleware, handlers.CreateSeason)
	app.Get("/api/seasons/:id", handlers.GetSeason)
	app.Put("/api/seasons/:id", middleware.AuthMiddleware, handlers.UpdateSeason)
	app.Delete("/api/seasons/:id", middleware.AuthMiddleware, handlers.DeleteSeason)
	app.Get("/api/seasons/:id/leaderboard", handlers.SeasonTeamLeaderboard)
	app.Get("/api/seasons/:id/leaderboard/players", handlers.SeasonPlayerLeaderboard)

	// Match lifecycle routes
	app.Get("/api/matches", middleware.OptionalAuthMiddleware, handlers.ListMatches)
	app.Post("/api/matches", middleware.AuthMiddleware, handlers.CreateMatch)
	app.Get("/api/matches/mine", middleware.AuthMiddleware, handlers.ListMyMatches)
	app.Get("/api/matches/:id", middleware.OptionalAuthMiddleware, handlers.GetMatch)
	app.Get("/api/matches/:id/scoreboard", middleware.OptionalAuthMiddleware, handlers.MatchScoreboard)
	app.Get("/api/matches/:id/map/:n/export", middleware.OptionalAuthMiddleware, handlers.ExportMapCSV)
	app.Post("/api/matches/:id/cancel", middleware.AuthMiddleware, handlers.CancelMatch)
	app.Post("/api/matches/:id/forfeit", middleware.SuperAdminMiddleware, handlers.ForfeitMatch)

	// Match admin routes
	app.Post("/api/matches/:id/pause", middleware.AuthMiddleware, handlers.PauseMatch)
	app.Post("/api/matches/:id/unpause", middleware.AuthMiddleware, handlers.UnpauseMatch)
	app.Post("/api/matches/:id/adduser", middleware.AuthMiddleware, handlers.AddMatchPlayer)
	app.Post("/api/matches/:id/rcon", middleware.AuthMiddleware, handlers.SendRcon)
	app.Get("/api/matches/:id/backups", middleware.AuthMiddleware, handlers.ListMatchBackups)
	app.Post("/api/matches/:id/backups/restore", middleware.AuthMiddleware, handlers.RestoreMatchBackup)
	app.Get("/api/matches/:id/audit", middleware.AuthMiddleware, handlers.MatchAuditLog)

	// Game server callbacks, keyed by the per-match API key
	app.Get("/api/match/:id/config", handlers.GetMatchConfig)
	app.Post("/api/match/:id/golive", handlers.MatchGoLive)
	app.Post("/api/match/:id/vetoUpdate", handlers.RecordMatchVeto)
	app.Post("/api/match/:id/map/:n/start", handlers.MapStart)
	app.Post("/api/match/:id/map/:n/update", handlers.MapUpdate)
	app.Post("/api/match/:id/map/:n/finish", handlers.MapFinish)
	app.Post("/api/match/:id/map/:n/player/:auth/update", handlers.PlayerUpdate)
	app.Post("/api/match/:id/map/:n/demo", handlers.MapDemo)
	app.Post("/api/match/:id/finish", handlers.MatchFinish)

	// Leaderboards and player pages
	app.Get("/api/leaderboard", handlers.TeamLeaderboard)
	app.Get("/api/leaderboard/players", handlers.PlayerLeaderboard)
	app.Get("/api/stats/:steamid", handlers.PlayerCareer)

	// User pages
	app.Get("/api/users/:id/matches", middleware.OptionalAuthMiddleware, handlers.UserMatches)

	// Live score stream
	app.Use("/ws", handlers.WebsocketUpgrade)
	app.Get("/ws/match/:id", websocket.New(handlers.MatchLive))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("DATABASE_KEY") == "" {
		log.Println("Warning: DATABASE_KEY not set, rcon passwords will be stored in plaintext")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "*" {
			log.Fatal("FATAL: CORS_ORIGINS must be set to explicit origins in production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
