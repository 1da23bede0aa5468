package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/go-pkgz/lgr"
	_ "github.com/go-sql-driver/mysql" // mysql driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// Config defines the target database. Driver is "mysql" or "sqlite";
// File is used for sqlite only, the tcp fields for mysql only.
type Config struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	File     string `yaml:"file"`
}

// Conn is a single connection scoped to the target database. The owner must
// Close it when the operation completes, on every exit path.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Close() error
}

// Connector ensures the database and its tables exist, then hands out fresh
// connections. Readiness is per-Connector state, initialized once for the
// lifetime of the process and never torn down. Safe for concurrent use.
type Connector struct {
	Config

	ready atomic.Bool
	lock  sync.Mutex
	setup func(ctx context.Context) error
}

// NewConnector makes a connector for the given target. No server activity
// happens until the first EnsureReady or Acquire call.
func NewConnector(cfg Config) *Connector {
	c := &Connector{Config: cfg}
	c.setup = c.createSchema
	return c
}

// EnsureReady creates the database and tables unless already done. Idempotent
// and safe under concurrent callers: the whole check-and-create sequence runs
// under one lock, so the schema is created at most once per process. A failed
// attempt leaves readiness unset and the next call retries from scratch.
func (c *Connector) EnsureReady(ctx context.Context) error {
	if c.ready.Load() { // advisory fast path, rechecked under the lock
		return nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.ready.Load() {
		return nil
	}
	if err := c.setup(ctx); err != nil {
		return err
	}
	c.ready.Store(true)
	log.Printf("[INFO] database %s ready", c.target())
	return nil
}

// Acquire returns a fresh connection to the ready database, triggering schema
// initialization on first use. Connections are not pooled across calls; the
// caller owns the returned Conn and must Close it. Every failure is reported
// as *ConnectionError wrapping the original cause.
func (c *Connector) Acquire(ctx context.Context) (Conn, error) {
	if err := c.EnsureReady(ctx); err != nil {
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &ConnectionError{Err: err}
	}

	db, err := c.open(ctx, c.target())
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return db, nil
}

// createSchema runs the full creation sequence: for mysql a server-scoped
// connection creates the database, then a db-scoped one creates the tables.
// For sqlite the file is the database, only tables are created. All
// statements use "if not exists" so reruns across restarts are safe.
func (c *Connector) createSchema(ctx context.Context) error {
	if c.Driver != "sqlite" {
		srv, err := c.open(ctx, "")
		if err != nil {
			return &ConnectionError{Err: err}
		}
		_, err = srv.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+c.DBName)
		if closeErr := srv.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("failed to create database %s: %w", c.DBName, err)
		}
	}

	db, err := c.open(ctx, c.target())
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer db.Close()

	for _, query := range c.tableQueries() {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// open makes a single direct connection, bypassing database/sql pooling so
// each Acquire really is an independent connection.
func (c *Connector) open(ctx context.Context, target string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, c.driverName(), c.dsn(target))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if c.Driver == "sqlite" {
		// WAL plus busy timeout lets concurrent single-use connections
		// share one file without immediate SQLITE_BUSY failures
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				if closeErr := db.Close(); closeErr != nil {
					return nil, fmt.Errorf("failed to set %s: %w (also failed to close db: %v)", pragma, err, closeErr)
				}
				return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
			}
		}
	}
	return db, nil
}

func (c *Connector) driverName() string {
	if c.Driver == "sqlite" {
		return "sqlite"
	}
	return "mysql"
}

// target is the database the repositories operate on, "" means server-scoped
func (c *Connector) target() string {
	if c.Driver == "sqlite" {
		return c.File
	}
	return c.DBName
}

func (c *Connector) dsn(target string) string {
	if c.Driver == "sqlite" {
		return c.File
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", c.User, c.Password, c.Host, c.Port, target)
}

func (c *Connector) tableQueries() []string {
	if c.Driver == "sqlite" {
		return []string{
			`CREATE TABLE IF NOT EXISTS jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				description TEXT,
				company TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				user_type TEXT NOT NULL CHECK (user_type IN ('Employer','JobSeeker'))
			)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(100) NOT NULL,
			description TEXT,
			company VARCHAR(100) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			user_type ENUM('Employer','JobSeeker') NOT NULL
		)`,
	}
}
