package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
)

const assumptionsKey = "session"

// assumptionsRecord holds the single set of session premium assumptions.
type assumptionsRecord struct {
	Key         string `badgerhold:"key"`
	Assumptions models.PremiumAssumptions
}

type assumptionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAssumptionStorage creates a new AssumptionStore backed by BadgerHold.
func NewAssumptionStorage(store *Store, logger *common.Logger) *assumptionStorage {
	return &assumptionStorage{store: store, logger: logger}
}

func (s *assumptionStorage) GetAssumptions(_ context.Context) (*models.PremiumAssumptions, error) {
	var rec assumptionsRecord
	if err := s.store.db.Get(assumptionsKey, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assumptions: %w", err)
	}
	if rec.Assumptions.SymbolPremiums == nil {
		rec.Assumptions.SymbolPremiums = map[string]float64{}
	}
	return &rec.Assumptions, nil
}

func (s *assumptionStorage) SaveAssumptions(_ context.Context, a models.PremiumAssumptions) error {
	rec := assumptionsRecord{Key: assumptionsKey, Assumptions: a.Clone()}
	if err := s.store.db.Upsert(assumptionsKey, &rec); err != nil {
		return fmt.Errorf("failed to save assumptions: %w", err)
	}
	s.logger.Debug().Int("overrides", len(a.SymbolPremiums)).Msg("Assumptions saved")
	return nil
}
