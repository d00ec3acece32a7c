package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DSN builds the go-sql-driver connection string. clientFoundRows makes
// RowsAffected count matched rows, which owner-scoped updates rely on.
// When DB_HOST is "/cloudsql/<CONNECTION_NAME>" the unix socket of the Cloud SQL proxy is used.
func (a App) DSN() string {
	network := "tcp"
	address := fmt.Sprintf("%s:%s", a.DBHost, a.DBPort)
	if strings.HasPrefix(a.DBHost, "/cloudsql/") {
		network = "unix"
		address = a.DBHost
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4&clientFoundRows=true",
		a.DBUser,
		a.DBPassword,
		network,
		address,
		a.DBName,
	)
}

// ConnectDatabaseWithRetry opens MySQL with exponential backoff until ctx is cancelled.
func ConnectDatabaseWithRetry(ctx context.Context, cfg App, logg *logrus.Logger) (*gorm.DB, error) {
	var attempt int
	for {
		attempt++
		db, err := gorm.Open(mysql.Open(cfg.DSN()), GormConfig())
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
				if cfg.DBMaxOpenConns > 0 {
					sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
				}
				if cfg.DBMaxIdleConns >= 0 {
					sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
				}
				if cfg.DBConnMaxLifetimeSecond > 0 {
					sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSecond) * time.Second)
				}
				if cfg.DBConnMaxIdleTimeSecond > 0 {
					sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSecond) * time.Second)
				}
			}
			if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
				logg.WithFields(logrus.Fields{"field": "database"}).Warn("db connected but failed to install otelgorm plugin: " + pluginErr.Error())
			}
			logg.WithFields(logrus.Fields{"field": "database", "attempt": attempt}).Info("connected to database")
			return db, nil
		}

		sleep := backoff(attempt)
		logg.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to connect database; retrying in " + sleep.String() + ": " + err.Error())
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

func backoff(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}

// GormConfig is shared by the MySQL connection and the sqlite test database.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
