// Package greeting persists the per-table "already greeted" flag.
//
// The flag keeps the table assistant from replaying its welcome every
// time the screen regains focus. It is explicit persisted state with a
// defined key (the table id) and a TTL, held in a small local bbolt file.
package greeting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "greetings"

// Store is the greeted-table flag store.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
}

type record struct {
	TableID   string    `json:"table_id"`
	GreetedAt time.Time `json:"greeted_at"`
}

// Open opens (creating if needed) the store at path.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir greeting path: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open greeting store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Greeted reports whether the table was greeted within the TTL. An
// expired record reads as not greeted.
func (s *Store) Greeted(tableID string, now time.Time) (bool, error) {
	var greeted bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(tableID))
		if len(data) == 0 {
			return nil
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		greeted = now.Sub(rec.GreetedAt) < s.ttl
		return nil
	})
	return greeted, err
}

// MarkGreeted records that the table has been greeted now.
func (s *Store) MarkGreeted(tableID string, now time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record{TableID: tableID, GreetedAt: now})
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(tableID), data)
	})
}

// Forget removes the flag for a table, forcing a fresh greeting.
func (s *Store) Forget(tableID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(tableID))
	})
}
