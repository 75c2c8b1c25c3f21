package main

import (
	"net/http"

	"strength-tracker/internal/api"
	"strength-tracker/internal/config"
	"strength-tracker/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	cfg := config.Load()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.SeedAdmin(db, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Fatal("failed to seed admin user")
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	api.SetupRoutes(apiGroup, db, cfg.JWTSecret)

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
