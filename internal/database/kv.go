package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Well-known keys persisted by the dashboard core.
const (
	KeyAssetHistory = "assetHistory"
	KeyCustomTags   = "customRecordTags"
	KeyExchangeKeys = "exchangeKeys"
)

// KVStore is the durable key-value layer the dashboard core persists through.
type KVStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewKVStore creates a new key-value repository
func NewKVStore(db *sql.DB, log zerolog.Logger) *KVStore {
	return &KVStore{
		db:  db,
		log: log.With().Str("repo", "kv").Logger(),
	}
}

// Get returns the raw value for a key. Missing keys return ok=false, not an error.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the raw value for a key, replacing any previous value.
func (s *KVStore) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// GetJSON unmarshals the stored value into dest. Missing keys return ok=false
// and leave dest untouched.
func (s *KVStore) GetJSON(key string, dest interface{}) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Malformed stored data is treated as absence, not as a fatal state.
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding malformed stored value")
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func (s *KVStore) SetJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %q: %w", key, err)
	}
	return s.Set(key, string(raw))
}
