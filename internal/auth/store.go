package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

// SQLiteStore keeps the session in a single-row table so a fresh login
// always replaces the previous one.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get() (*models.Session, error) {
	row := s.db.QueryRow(
		`SELECT email, id_token, refresh_token, expires_at, device_id FROM sessions WHERE id = 1`,
	)

	var session models.Session
	err := row.Scan(&session.Email, &session.IDToken, &session.RefreshToken, &session.ExpiresAt, &session.DeviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return &session, nil
}

func (s *SQLiteStore) Put(session *models.Session) error {
	if session == nil {
		return fmt.Errorf("%w: nil session", shared.ErrInvalidArgument)
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, email, id_token, refresh_token, expires_at, device_id, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			id_token = excluded.id_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			device_id = excluded.device_id,
			updated_at = excluded.updated_at`,
		session.Email, session.IDToken, session.RefreshToken,
		session.ExpiresAt, session.DeviceID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

// DeviceUUID returns the stable identifier for this installation,
// generating and persisting one on first use.
func (s *SQLiteStore) DeviceUUID() (string, error) {
	value, err := s.Setting("device_uuid")
	if err != nil {
		return "", err
	}
	if value != "" {
		return value, nil
	}

	value = shared.GenerateID()
	if err := s.PutSetting("device_uuid", value); err != nil {
		return "", err
	}

	return value, nil
}

// Setting returns the value for key, or "" when unset.
func (s *SQLiteStore) Setting(key string) (string, error) {
	row := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}

	return value, nil
}

func (s *SQLiteStore) PutSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store setting %q: %w", key, err)
	}

	return nil
}
