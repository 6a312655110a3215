// Package storage persists client-side preferences in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/frontdesk/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Preference keys.
const (
	keyActiveLocation   = "active_location_id"
	keySidebarCollapsed = "sidebar_collapsed"
)

// SQLiteStorage stores preferences in a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Preferences returns the preference set of one user. Preferences of
// different users sharing a workstation never mix.
func (s *SQLiteStorage) Preferences(userID string) service.Preferences {
	return &userPreferences{storage: s, userID: userID}
}

func (s *SQLiteStorage) get(ctx context.Context, userID, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE user_id = ? AND key = ?`,
		userID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) set(ctx context.Context, userID, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// userPreferences implements service.Preferences for one user.
type userPreferences struct {
	storage *SQLiteStorage
	userID  string
}

func (p *userPreferences) ActiveLocation(ctx context.Context) (int64, bool, error) {
	raw, ok, err := p.storage.get(ctx, p.userID, keyActiveLocation)
	if err != nil || !ok {
		return 0, false, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// A corrupt value is treated as "nothing persisted".
		return 0, false, nil
	}
	return id, true, nil
}

func (p *userPreferences) SetActiveLocation(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: location id %d", ErrInvalidPreference, id)
	}
	return p.storage.set(ctx, p.userID, keyActiveLocation, strconv.FormatInt(id, 10))
}

func (p *userPreferences) SidebarCollapsed(ctx context.Context) (bool, error) {
	raw, ok, err := p.storage.get(ctx, p.userID, keySidebarCollapsed)
	if err != nil || !ok {
		return false, err
	}
	collapsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return collapsed, nil
}

func (p *userPreferences) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	return p.storage.set(ctx, p.userID, keySidebarCollapsed, strconv.FormatBool(collapsed))
}
