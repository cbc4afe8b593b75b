package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

type Config struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConnection opens a pooled Postgres connection and verifies it with a
// ping. A full DATABASE_URL wins over the individual settings.
func NewConnection(config Config) (*DB, error) {
	dsn := config.URL
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations applies every embedded migration not yet recorded in
// schema_migrations
func (db *DB) RunMigrations() error {
	return NewMigrator(db.DB).RunMigrations()
}

// GetMigrationStatus prints one line per embedded migration with its
// applied state
func (db *DB) GetMigrationStatus() error {
	return NewMigrator(db.DB).GetMigrationStatus()
}
