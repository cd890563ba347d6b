package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c GormConfig) dsn() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// Pool sizing: gateway webhooks arrive in bursts, so the open ceiling
// stays well above the idle floor. Hour-long lifetime keeps rotated
// credentials and load-balancer failovers from pinning stale sockets.
const (
	maxIdleConns    = 10
	maxOpenConns    = 100
	connMaxLifetime = time.Hour
)

// sqlLogger sends SQL to stdout outside the structured app log.
// Parameters are redacted since contributions carry payer contact
// details.
func sqlLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: sqlLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

// NewGormDB opens a postgres connection from discrete config fields.
func NewGormDB(cfg GormConfig) (*gorm.DB, error) {
	return open(cfg.dsn())
}

// NewGormDBFromDSN opens a postgres connection from a raw DSN, the
// form DATABASE_URL deployments provide.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return open(dsn)
}
