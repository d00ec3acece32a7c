package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/handlers"
	"github.com/mmdatafocus/zone_expense_backend/middlewares"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
}

func corsConfig(cfg config.App) cors.Config {
	cc := cors.DefaultConfig()
	// In production only the configured origins are allowed; an empty list denies all.
	if cfg.IsProduction() {
		cc.AllowOrigins = cfg.AllowedOrigins()
		if len(cc.AllowOrigins) == 0 {
			cc.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		cc.AllowAllOrigins = true
	}
	cc.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	cc.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	cc.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	cc.AllowCredentials = !cc.AllowAllOrigins
	return cc
}

func newRouter(cfg config.App, logger *logrus.Logger, rdb *config.Redis, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationId())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Use(cors.New(corsConfig(cfg)))

	if cfg.RateLimitEnabled {
		if rdb == nil {
			logger.WithFields(logrus.Fields{"field": "rate_limit"}).Warn("RATE_LIMIT_ENABLED=true but redis is not configured; rate limiting disabled")
		} else {
			rateLimiter := middlewares.NewRateLimiter(rdb, cfg.RateLimitMaxRequests, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)
			r.Use(rateLimiter.RateLimitMiddleware)
		}
	}

	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger("error").WithFields(logrus.Fields{"field": "config"}).Fatal(err.Error())
	}
	logger := config.NewLogger(cfg.LogLvl)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	// Cloud Run sends SIGTERM on revision shutdown.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := config.ConnectDatabaseWithRetry(sigCtx, cfg, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Fatal(err.Error())
	}
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can lock tables; SKIP_MIGRATIONS lets a separate job own DDL.
	if !cfg.SkipMigrations {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	rdb, err := config.ConnectRedisWithRetry(sigCtx, cfg, logger)
	if err != nil {
		// Redis only backs optional features.
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn(err.Error() + "; continuing without redis")
	}
	defer func() { _ = rdb.Close() }()

	var store utils.FileStore
	if cfg.GCSBucket != "" {
		gcs, err := utils.NewGCSStore(sigCtx, cfg.GCSBucket, cfg.GCSURL, cfg.GCSCredentialsJSON)
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "storage"}).Fatal(err.Error())
		}
		defer gcs.Close()
		store = gcs
	} else {
		logger.WithFields(logrus.Fields{"field": "storage"}).Warn("GCS_BUCKET not set; uploads disabled")
	}

	h, err := handlers.New(handlers.Deps{
		DB:     db,
		Redis:  rdb,
		Store:  store,
		Tokens: utils.NewTokenIssuer(cfg.APISecret, cfg.TokenLifespan()),
		Logger: logger,
		Config: cfg,
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "handlers"}).Fatal(err.Error())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, rdb, h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()
	logger.WithFields(logrus.Fields{"info": "Connection Established"}).Info("listening on :", cfg.Port)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
