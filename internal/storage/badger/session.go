package badger

import (
	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
)

// SessionStore implements interfaces.SessionStore on one BadgerHold database.
type SessionStore struct {
	store       *Store
	assumptions *assumptionStorage
	positions   *positionStorage
	seen        *seenStorage
}

// NewSessionStore opens the session database at config.Storage.Path, or in
// memory when the path is empty.
func NewSessionStore(logger *common.Logger, config *common.Config) (*SessionStore, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Bool("in_memory", config.Storage.InMemory()).
		Str("path", config.Storage.Path).
		Msg("Session store initialized")

	return &SessionStore{
		store:       store,
		assumptions: NewAssumptionStorage(store, logger),
		positions:   NewPositionStorage(store, logger),
		seen:        NewSeenStorage(store, logger),
	}, nil
}

func (s *SessionStore) Assumptions() interfaces.AssumptionStore { return s.assumptions }
func (s *SessionStore) Positions() interfaces.PositionStore { return s.positions }
func (s *SessionStore) SeenAlerts() interfaces.AlertSeenStore { return s.seen }

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.store.Close()
}

var _ interfaces.SessionStore = (*SessionStore)(nil)
