package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/oopsmv/backend/internal/config"
	"github.com/oopsmv/backend/internal/handlers"
	"github.com/oopsmv/backend/internal/middleware"
	"github.com/oopsmv/backend/internal/models"
	"github.com/oopsmv/backend/internal/services"
	"github.com/oopsmv/backend/internal/session"
	"github.com/oopsmv/backend/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize stores and session manager
	credentialStore := store.NewCredentialStore(db)
	musicStore := store.NewMusicStore(db)
	sessionManager := session.NewManager(session.NewRedisStore(redisClient), cfg.SessionSecret, cfg.SessionTTL)

	// Initialize services
	authService := services.NewAuthService(credentialStore, sessionManager, cfg)
	musicService := services.NewMusicService(musicStore)
	recommendService := services.NewRecommendService(cfg)
	shareService := services.NewShareService(cfg)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	musicHandler := handlers.NewMusicHandler(musicService, shareService)
	recommendHandler := handlers.NewRecommendHandler(recommendService)

	// Health check outside API group
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.Auth(authService, cfg), authHandler.Logout)
			auth.GET("/session", authHandler.Session)
		}

		// Public catalog reads
		api.GET("/music", musicHandler.List)
		api.GET("/music/:id", musicHandler.Get)

		// Catalog writes require an authenticated session
		music := api.Group("/music")
		music.Use(middleware.Auth(authService, cfg))
		{
			music.POST("", musicHandler.Register)
			music.POST("/:id/context", musicHandler.AttachContext)
			music.PUT("/:id", musicHandler.Update)
			music.DELETE("/:id", musicHandler.Delete)
			music.GET("/:id/share.pdf", musicHandler.SharePDF)
		}

		// Recommendation proxy
		api.POST("/recommend", recommendHandler.Recommend)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
