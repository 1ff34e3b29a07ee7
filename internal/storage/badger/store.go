// Package badger provides BadgerHold-based session storage.
package badger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/premia/internal/common"
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens a BadgerHold store. An empty path keeps all data in memory.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	options := badgerhold.DefaultOptions
	// JSON keeps nil and zero pointers distinct, which the models rely on.
	options.Encoder = json.Marshal
	options.Decoder = json.Unmarshal
	options.Logger = nil // Disable default badger logger

	if path == "" {
		options.InMemory = true
		options.Dir = ""
		options.ValueDir = ""
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
		}
		options.Dir = path
		options.ValueDir = path
	}

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Bool("in_memory", path == "").Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
