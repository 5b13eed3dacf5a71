// Package session keeps logged-in admin sessions in a fiber storage backend.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Data represents the session data structure.
type Data struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Store reads and writes session data.
type Store struct {
	storage fiber.Storage
	expiry  time.Duration
}

// NewStore creates a Store on top of storage, an in-memory storage is used when storage is nil.
func NewStore(storage fiber.Storage, expiry time.Duration) *Store {
	return &Store{
		storage: session.New(session.Config{Storage: storage}).Storage,
		expiry:  expiry,
	}
}

// Expiry returns how long a written session lives.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Write writes the session data for the given session ID.
func (s *Store) Write(sessionID string, data *Data) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.storage.Set(sessionID, out, s.expiry)
}

// Read reads the session data for the given session ID.
func (s *Store) Read(sessionID string) (*Data, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	raw, err := s.storage.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrSessionNotFound
	}

	data := new(Data)
	if err = json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if data.UserID == 0 {
		return nil, ErrSessionNotFound
	}

	return data, nil
}

// Delete removes the session.
func (s *Store) Delete(sessionID string) error {
	return s.storage.Delete(sessionID)
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
