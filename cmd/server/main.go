package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/judemcastillo/social-media-clone/internal/cache"
	"github.com/judemcastillo/social-media-clone/internal/handlers"
	wshub "github.com/judemcastillo/social-media-clone/internal/handlers/ws"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/middleware"
	"github.com/judemcastillo/social-media-clone/internal/repository"
	"github.com/judemcastillo/social-media-clone/internal/service"
	"github.com/judemcastillo/social-media-clone/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		log.Fatal("AUTH_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Chat Backend",
		// Support chat image uploads up to 10MB + overhead.
		BodyLimit: 12 * 1024 * 1024, // 12MB
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	unreadCache := cache.NewUnreadCache(redisCache)
	convCache := cache.NewConversationCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readRepo := repository.NewReadReceiptRepository(db)

	// Initialize hub and services
	hub := wshub.NewHub()
	membershipService := service.NewMembershipService(convRepo, participantRepo, userRepo, messageRepo, readRepo)
	historyService := service.NewHistoryService(convRepo, participantRepo, messageRepo, membershipService)
	messageService := service.NewMessageService(messageRepo, convRepo, participantRepo, membershipService, hub)
	unreadService := service.NewUnreadService(readRepo, membershipService)

	// Initialize S3/MinIO storage (best-effort; the upload endpoint returns 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(hub, membershipService, messageService, unreadCache, convCache)
	conversationHandler := handlers.NewConversationHandler(membershipService, hub, convCache)
	messageHandler := handlers.NewMessageHandler(historyService, unreadService, unreadCache, convCache)
	uploadHandler := handlers.NewUploadHandler(s3Store)

	// Protected routes
	api := app.Group("/api", middleware.OriginAllowed())
	protected := api.Group("/", middleware.AuthRequired())

	protected.Get("/conversations", conversationHandler.GetConversations)
	protected.Get("/rooms/featured", conversationHandler.GetFeaturedRooms)
	protected.Post("/conversations/direct", middleware.NoGuests(), conversationHandler.CreateDirect)
	protected.Post("/conversations/groups", middleware.NoGuests(), conversationHandler.CreateGroup)
	protected.Post("/conversations/rooms", middleware.NoGuests(), conversationHandler.CreateRoom)
	protected.Post("/conversations/:id/join", middleware.NoGuests(), conversationHandler.JoinRoom)
	protected.Post("/conversations/:id/leave", middleware.NoGuests(), conversationHandler.Leave)
	protected.Post("/conversations/:id/members", middleware.NoGuests(), conversationHandler.AddMembers)
	protected.Delete("/conversations/:id/members/:user_id", middleware.NoGuests(), conversationHandler.RemoveMember)
	protected.Get("/conversations/:id/members", conversationHandler.GetParticipants)

	protected.Get("/conversations/direct/:peer_id/messages", middleware.NoGuests(), messageHandler.GetDirectMessages)
	protected.Get("/conversations/:id/messages", middleware.NoGuests(), messageHandler.GetMessages)
	protected.Post("/conversations/:id/read", messageHandler.MarkConversationRead)
	protected.Get("/unread/total", messageHandler.GetUnreadTotal)

	protected.Post(
		"/uploads/chat",
		middleware.NoGuests(),
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "upload:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		uploadHandler.UploadChatImage,
	)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		middleware.NoGuests(),
		func(c *fiber.Ctx) error {
			// Upgrade to WebSocket
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Chat backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
