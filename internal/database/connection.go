package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ajei/internal/config"
	"ajei/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	db *gorm.DB
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Init opens the process-wide connection from the loaded configuration.
func Init() error {
	conn, err := Open(&config.Get().Database)
	if err != nil {
		return err
	}
	db = conn
	return nil
}

// Open connects, configures pooling and migrates the schema.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	log := slog.Default().With("component", "db")
	var dialector gorm.Dialector

	if cfg.IsPostgres() {
		log.Info("connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.GetPostgresDSN())
	} else {
		log.Info("connecting to SQLite database", "path", cfg.GetSQLitePath())
		sqlDB, err := sql.Open("sqlite", cfg.GetSQLitePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// SQLite allows a single writer at a time.
		sqlDB.SetMaxOpenConns(1)
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        cfg.GetSQLitePath(),
			Conn:       sqlDB,
		}
	}

	// Never log SQL: queries carry visitor IPs and lead contact details.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsPostgres() {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

		log.Info("connection pool configured", "max_open", maxOpenConns, "max_idle", maxIdleConns)
	}

	if err := ping(conn); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	log.Info("running database migrations")
	err = conn.AutoMigrate(
		&domain.User{},
		&domain.Submission{},
		&domain.PageView{},
		&domain.SiteSetting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database connected and migrated")
	return conn, nil
}

func ping(conn *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		panic("database not initialized: call database.Init() first")
	}
	return db
}

// HealthCheck pings the given connection.
func HealthCheck(conn *gorm.DB) error {
	return ping(conn)
}

// Close releases the underlying pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
