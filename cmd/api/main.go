package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imobiliaria-portal/internal/auth"
	"imobiliaria-portal/internal/backup"
	"imobiliaria-portal/internal/cleanup"
	"imobiliaria-portal/internal/config"
	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/handlers"
	"imobiliaria-portal/internal/scheduler"
	"imobiliaria-portal/internal/search"
	syncsvc "imobiliaria-portal/internal/sync"
	"imobiliaria-portal/internal/upload"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience, a missing .env is fine
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "./config/config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		cfg = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	if cfg.Auth.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Primary store (MySQL)
	db, err := database.NewGormDB(
		cfg.Database.Host,
		fmt.Sprintf("%d", cfg.Database.Port),
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
	)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Backup store (PostgreSQL)
	backupDB, err := database.NewBackupDB(
		cfg.Backup.Host,
		fmt.Sprintf("%d", cfg.Backup.Port),
		cfg.Backup.User,
		cfg.Backup.Password,
		cfg.Backup.Database,
		cfg.Backup.SSLMode,
	)
	if err != nil {
		log.Fatalf("Failed to connect to backup database: %v", err)
	}
	defer backupDB.Close()

	if err := backupDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize backup schema: %v", err)
	}

	// Search index
	var searchClient *search.SearchClient
	if cfg.Search.Meilisearch.Host != "" {
		searchClient = search.NewSearchClient(cfg.Search.Meilisearch.Host, cfg.Search.Meilisearch.APIKey)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
	} else {
		log.Println("Meilisearch host not configured, search disabled")
	}

	uploads := upload.NewStorage(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix)
	if err := os.MkdirAll(uploads.Root(), 0o755); err != nil {
		log.Fatalf("Failed to create uploads directory: %v", err)
	}

	backupWorker := backup.NewWorker(backupDB, uploads, cfg.Backup.QueueSize)
	backupWorker.Start()
	defer backupWorker.Stop()

	authSvc := auth.NewService(cfg.Auth.Secret, cfg.Auth.PasswordSalt, cfg.Auth.GetTokenTTL())

	var syncService *syncsvc.Service
	if cfg.Strapi.Host != "" {
		cmsClient := syncsvc.NewClient(cfg.Strapi.Host, cfg.Strapi.APIToken, cfg.Strapi.GetTimeout())
		syncService = syncsvc.NewService(db, cmsClient, cfg.Server.BaseURL)
	} else {
		log.Println("Strapi host not configured, CMS sync disabled")
	}

	var deindexer cleanup.Deindexer
	if searchClient != nil {
		deindexer = searchClient
	}
	cleanupSvc := cleanup.NewService(db.DB(), uploads, deindexer)

	appScheduler := scheduler.NewScheduler(syncService, cleanupSvc, cfg)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	router := buildRouter(cfg, db, backupDB, uploads, backupWorker, authSvc, syncService, cleanupSvc, searchClient)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	// Deferred stops drain the backup queue and halt the scheduler
}

func buildRouter(
	cfg *config.Config,
	db *database.GormDB,
	backupDB *database.BackupDB,
	uploads *upload.Storage,
	backupWorker *backup.Worker,
	authSvc *auth.Service,
	syncService *syncsvc.Service,
	cleanupSvc *cleanup.Service,
	searchClient *search.SearchClient,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Static(uploads.PublicPrefix(), uploads.Root())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
	})

	authHandler := handlers.NewAuthHandler(db, authSvc)
	var searcher handlers.Searcher
	if searchClient != nil {
		searcher = searchClient
	}
	publicHandler := handlers.NewPublicHandler(db, searcher)
	imovelHandler := handlers.NewImovelHandler(db, uploads, backupWorker, searchClient)
	corretorHandler := handlers.NewCorretorHandler(db, authSvc, uploads)
	contatoHandler := handlers.NewContatoHandler(db)
	backupHandler := handlers.NewBackupHandler(backupDB, db)
	adminHandler := handlers.NewAdminHandler(db, cleanupSvc, cfg)

	// Public site
	r.POST("/api/auth/login", authHandler.Login)
	r.GET("/api/imoveis", publicHandler.ListImoveis)
	r.GET("/api/imoveis/busca", publicHandler.Busca)
	r.GET("/api/imoveis/:id", publicHandler.GetImovel)
	r.POST("/api/contatos", publicHandler.CreateContato)

	// Authenticated panel (any broker)
	authed := r.Group("/api", authSvc.RequireAuth())
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/admin/imoveis", imovelHandler.List)
		authed.GET("/admin/imoveis/:id", imovelHandler.Get)
		authed.POST("/admin/imoveis", imovelHandler.Create)
		authed.PUT("/admin/imoveis/:id", imovelHandler.Update)

		authed.GET("/admin/contatos", contatoHandler.List)
		authed.GET("/admin/contatos/:id", contatoHandler.Get)
		authed.PUT("/admin/contatos/:id/status", contatoHandler.UpdateStatus)

		authed.GET("/admin/stats", adminHandler.Stats)
	}

	// Admin-only surface: account management, destructive operations, the
	// backup inventory and CMS sync
	admin := r.Group("/api", authSvc.RequireAuth(), auth.RequireRole("admin"))
	{
		admin.DELETE("/admin/imoveis/:id", imovelHandler.Delete)
		admin.POST("/admin/search/reindex", imovelHandler.Reindex)

		admin.GET("/admin/corretores", corretorHandler.List)
		admin.GET("/admin/corretores/:id", corretorHandler.Get)
		admin.POST("/admin/corretores", corretorHandler.Create)
		admin.PUT("/admin/corretores/:id", corretorHandler.Update)
		admin.DELETE("/admin/corretores/:id", corretorHandler.Delete)

		admin.DELETE("/admin/contatos/:id", contatoHandler.Delete)

		admin.GET("/admin/backup", backupHandler.List)
		admin.GET("/admin/backup/download/:id", backupHandler.Download)
		admin.GET("/admin/backup/imoveis/:id", backupHandler.ListByImovel)

		admin.POST("/admin/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/admin/cleanup/logs", adminHandler.DeleteLogs)

		if syncService != nil {
			syncHandler := handlers.NewSyncHandler(syncService)
			admin.POST("/sync-imoveis", syncHandler.SyncAll)
			admin.POST("/sync-imoveis/:id", syncHandler.SyncOne)
		}
	}

	return r
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
