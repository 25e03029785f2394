package infrastructure

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteClient wraps the single database file shared by the message router and
// the scheduler. Mu serializes store operations at single-operation
// granularity; both actors run in one process, so a coarse lock is enough.
type SQLiteClient struct {
	DB *sql.DB
	Mu sync.Mutex
}

func NewSQLiteClient(path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// A single connection avoids SQLITE_BUSY between the two actors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &SQLiteClient{DB: db}

	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (c *SQLiteClient) Migrate() error {
	// Chats table: one row per observed chat or user, created on first
	// interaction and never deleted. Blocking is a separate flag.
	_, err := c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			chat_id INTEGER PRIMARY KEY,
			username TEXT,
			chat_type TEXT,
			first_seen INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
	`)
	if err != nil {
		return fmt.Errorf("create chats table: %w", err)
	}

	// Roles table: absence of a row means role 'user'.
	_, err = c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			user_id INTEGER PRIMARY KEY,
			role TEXT NOT NULL,
			added_on INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
	`)
	if err != nil {
		return fmt.Errorf("create roles table: %w", err)
	}

	_, err = c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS blocked_users (
			chat_id INTEGER PRIMARY KEY,
			blocked INTEGER NOT NULL DEFAULT 1,
			updated_on INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
	`)
	if err != nil {
		return fmt.Errorf("create blocked_users table: %w", err)
	}

	// send_time is stored as unix seconds so the due-query is a plain
	// integer comparison regardless of the configured timezone.
	_, err = c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS scheduled_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target_type TEXT NOT NULL,
			message TEXT NOT NULL,
			send_time INTEGER NOT NULL,
			sent INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("create scheduled_messages table: %w", err)
	}

	_, err = c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}

	// Operator accounts for the admin HTTP API.
	_, err = c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin',
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
	`)
	if err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}

	return nil
}

func (c *SQLiteClient) Close() error {
	return c.DB.Close()
}
