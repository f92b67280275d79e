package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// schema is applied in order.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NULL,
		role ENUM('ADMIN','CUSTOMER') NOT NULL DEFAULT 'CUSTOMER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS train_schedules (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		train_name VARCHAR(255) NOT NULL,
		travel_date DATE NOT NULL,
		departure_time TIME NULL,
		arrival_time TIME NULL,
		start_station VARCHAR(255) NOT NULL,
		stop_station VARCHAR(255) NOT NULL,
		unavailable_seats JSON NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_schedule_departure (travel_date, departure_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS train_classes (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		train_id BIGINT UNSIGNED NOT NULL,
		class_name ENUM('First','Second') NOT NULL,
		carriages INT NOT NULL,
		seat_rows INT NOT NULL,
		seat_cols INT NOT NULL,
		capacity INT NOT NULL,
		UNIQUE KEY uq_train_class (train_id, class_name),
		CONSTRAINT fk_class_train FOREIGN KEY (train_id) REFERENCES train_schedules(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Manager owns the connection pool and the one-time schema setup.  Create
// one per process, call EnsureReady before serving and Close on shutdown.
type Manager struct {
	db *sql.DB

	mu    sync.Mutex
	ready bool
}

func NewManager(db *sql.DB) *Manager { return &Manager{db: db} }

// DB returns the pool.
func (m *Manager) DB() *sql.DB { return m.db }

// EnsureReady applies the schema the first time it succeeds.  Later calls
// return immediately.  A failed attempt leaves the manager not ready so
// the next call retries from the first statement.
func (m *Manager) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}
	for i, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	m.ready = true
	return nil
}

// Ready reports whether the schema has been applied.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Ping checks the pool is reachable.
func (m *Manager) Ping(ctx context.Context) error { return m.db.PingContext(ctx) }

// Close releases the pool.  The manager is not ready afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
	return m.db.Close()
}
