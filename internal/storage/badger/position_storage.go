package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/models"
)

// positionRecord stores one monitored position. Seq preserves backend order.
type positionRecord struct {
	Key      string `badgerhold:"key"`
	Seq      int
	Position models.MonitoredPosition
}

type positionStorage struct {
	store  *Store
	logger *common.Logger
	// mu makes replace and put atomic with respect to list
	mu sync.Mutex
}

// NewPositionStorage creates a new PositionStore backed by BadgerHold.
func NewPositionStorage(store *Store, logger *common.Logger) *positionStorage {
	return &positionStorage{store: store, logger: logger}
}

func (s *positionStorage) ReplacePositions(_ context.Context, positions []models.MonitoredPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.db.DeleteMatching(&positionRecord{}, nil); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	for i, p := range positions {
		rec := positionRecord{Key: p.Key(), Seq: i, Position: p}
		if err := s.store.db.Upsert(rec.Key, &rec); err != nil {
			return fmt.Errorf("failed to store position %s: %w", rec.Key, err)
		}
	}
	s.logger.Debug().Int("positions", len(positions)).Msg("Positions replaced")
	return nil
}

func (s *positionStorage) PutPosition(_ context.Context, p models.MonitoredPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Key()
	var existing positionRecord
	err := s.store.db.Get(key, &existing)
	switch {
	case err == nil:
		existing.Position = p
		if err := s.store.db.Update(key, &existing); err != nil {
			return fmt.Errorf("failed to update position %s: %w", key, err)
		}
		return nil
	case !errors.Is(err, badgerhold.ErrNotFound):
		return fmt.Errorf("failed to get position %s: %w", key, err)
	}

	count, err := s.store.db.Count(&positionRecord{}, nil)
	if err != nil {
		return fmt.Errorf("failed to count positions: %w", err)
	}
	rec := positionRecord{Key: key, Seq: int(count), Position: p}
	if err := s.store.db.Insert(key, &rec); err != nil {
		return fmt.Errorf("failed to insert position %s: %w", key, err)
	}
	return nil
}

func (s *positionStorage) ListPositions(_ context.Context) ([]models.MonitoredPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []positionRecord
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	slices.SortFunc(records, func(a, b positionRecord) int { return a.Seq - b.Seq })

	out := make([]models.MonitoredPosition, len(records))
	for i, r := range records {
		out[i] = r.Position
	}
	return out, nil
}
