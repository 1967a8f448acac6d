package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fastship/fastship/pkg/config"
	"github.com/fastship/fastship/pkg/domain/partner"
	"github.com/fastship/fastship/pkg/domain/seller"
	"github.com/fastship/fastship/pkg/domain/shipment"
)

// DB represents the database connection
type DB struct {
	logger *logrus.Logger
	*gorm.DB
}

// NewDB creates a new database connection
func NewDB(logger *logrus.Logger, cfg *config.DatabaseConfig) (*DB, error) {
	logger.WithFields(logrus.Fields{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"db":      cfg.DBName,
		"sslmode": cfg.SSLMode,
	}).Info("connecting to database")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)

	return &DB{logger: logger, DB: gormDB}, nil
}

// Migrate keeps the schema in sync with the domain entities.
func (db *DB) Migrate() error {
	return db.AutoMigrate(
		&seller.Seller{},
		&partner.DeliveryPartner{},
		&shipment.Shipment{},
		&shipment.Event{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
