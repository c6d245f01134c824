package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vettrack/pet-health/backend/internal/api/handlers"
	"github.com/vettrack/pet-health/backend/internal/database"
	"github.com/vettrack/pet-health/backend/internal/metrics"
	"github.com/vettrack/pet-health/backend/internal/middleware"
	"github.com/vettrack/pet-health/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[STARTUP] No .env file found, using environment variables")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/pethealth.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("[STARTUP] Failed to create data directory: %v", err)
	}

	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("[STARTUP] Failed to initialize database: %v", err)
	}

	db := database.GetDB()

	gemini := services.NewGeminiAnalysisService()
	cache := services.NewAnalysisCacheService(db)
	history := services.NewHistoryService(db)
	analyzer := services.NewAnalyzerService(gemini, cache, history)
	storage := services.NewImageStorageService()
	tts := services.NewTTSService()

	petHandler := handlers.NewPetHandler(storage)
	analysisHandler := handlers.NewAnalysisHandler(analyzer, gemini, storage)
	historyHandler := handlers.NewHistoryHandler(history)
	ttsHandler := handlers.NewTTSHandler(tts)
	adminHandler := handlers.NewAdminHandler(cache)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(metrics.HTTPMetrics())

	router.MaxMultipartMemory = 16 << 20

	router.Static("/uploads", storage.GetStorageDir())

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := database.GetDB().DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	analysisLimit := middleware.AnalysisRateLimit()

	api := router.Group("/api")
	{
		api.POST("/pets", petHandler.CreatePet)
		api.GET("/pets", petHandler.ListPets)
		api.GET("/pets/:id", petHandler.GetPet)
		api.PUT("/pets/:id", petHandler.UpdatePet)
		api.DELETE("/pets/:id", petHandler.DeletePet)

		api.POST("/pets/:id/symptoms", analysisLimit, analysisHandler.CheckSymptoms)
		api.POST("/pets/:id/image", analysisLimit, analysisHandler.AnalyzeImage)
		api.POST("/explain", analysisLimit, analysisHandler.ExplainDiagnosis)
		api.GET("/analysis/status", analysisHandler.AnalysisStatus)

		api.GET("/history/:petId", historyHandler.ListHistory)
		api.DELETE("/history/records/:id", historyHandler.DeleteRecord)

		api.POST("/tts", ttsHandler.Speak)
		api.GET("/tts/status", ttsHandler.Status)

		api.GET("/auth/status", middleware.GetAuthStatus)
		api.POST("/auth/verify", middleware.VerifyAdminKey)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminKeyAuth())
		{
			admin.GET("/stats", adminHandler.GetStats)
		}
	}

	// Keep the record gauges fresh even when nothing is writing.
	go func() {
		metrics.UpdateRecordMetrics(db)
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateRecordMetrics(database.GetDB())
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("[SERVER] Listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[SERVER] Listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[SERVER] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[SERVER] Shutdown error: %v", err)
	}
	log.Println("[SERVER] Stopped")
}
