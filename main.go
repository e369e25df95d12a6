package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/config"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/store"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// buildCORSConfig derives the CORS policy from the environment. Production
// requires an explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated);
// non-production allows all origins.
func buildCORSConfig(goEnv, allowedOrigins string) (cors.Config, error) {
	corsConfig := cors.DefaultConfig()
	if strings.EqualFold(strings.TrimSpace(goEnv), "production") {
		origins := splitAndTrim(allowedOrigins)
		if len(origins) == 0 {
			return cors.Config{}, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin when GO_ENV=production")
		}
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	return corsConfig, nil
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger logs only requests that accumulated gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig, err := buildCORSConfig(os.Getenv("GO_ENV"), os.Getenv("CORS_ALLOWED_ORIGINS"))
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "cors"}).Panic(err.Error())
	}
	r.Use(cors.New(corsConfig))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	db := config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	st, err := store.New(db)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "store"}).Panic(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	app := NewApp(st, logger)

	api := r.Group("/api")
	api.POST("/datasets/:kind", app.uploadDataset)
	api.GET("/datasets", app.datasetCounts)
	api.POST("/goals", app.uploadGoals)
	api.POST("/reports/sales", app.salesReport)
	api.POST("/reports/purchases", app.purchasesReport)
	api.POST("/reports/expenses", app.expensesReport)
	api.GET("/reports/expenses/export", app.expensesExport)
	api.POST("/reports/hr", app.hrReport)
	api.POST("/reports/stock", app.stockReport)
	api.POST("/reports/pl", app.profitAndLossReport)
	api.GET("/reports/goals", app.goalComplianceReport)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
