// Package database opens the PostgreSQL connection pool.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/study-crew/peer-assist-api/pkg/config"
)

const (
	connMaxLifetime = time.Hour
	connMaxIdleTime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// NewPostgres opens a connection pool and verifies it with a ping.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func buildDSN(cfg config.DatabaseConfig) string {
	parts := []string{
		"host=" + cfg.Host,
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
		"sslmode=" + cfg.SSLMode,
	}
	return strings.Join(parts, " ")
}
