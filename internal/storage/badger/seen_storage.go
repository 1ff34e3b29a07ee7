package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/premia/internal/common"
)

// seenRecord marks a position/threshold pair that already produced an alert.
type seenRecord struct {
	Key    string `badgerhold:"key"`
	SeenAt time.Time
}

type seenStorage struct {
	store  *Store
	logger *common.Logger
	mu     sync.Mutex
}

// NewSeenStorage creates a new AlertSeenStore backed by BadgerHold.
func NewSeenStorage(store *Store, logger *common.Logger) *seenStorage {
	return &seenStorage{store: store, logger: logger}
}

func (s *seenStorage) MarkSeen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec seenRecord
	err := s.store.db.Get(key, &rec)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badgerhold.ErrNotFound) {
		return false, fmt.Errorf("failed to check alert key %s: %w", key, err)
	}

	rec = seenRecord{Key: key, SeenAt: time.Now().UTC()}
	if err := s.store.db.Insert(key, &rec); err != nil {
		return false, fmt.Errorf("failed to record alert key %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("Alert key recorded")
	return true, nil
}
