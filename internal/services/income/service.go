package income

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

// ErrInvalidAssumptions wraps validation failures of a user edit.
var ErrInvalidAssumptions = errors.New("invalid assumptions")

// Service implements IncomeService
type Service struct {
	backend  interfaces.BackendClient
	store    interfaces.AssumptionStore
	defaults models.PremiumAssumptions
	logger   *common.Logger
	now      func() time.Time

	// assumptionsMu serialises read-modify-write of the stored assumptions
	assumptionsMu sync.Mutex

	mu        sync.RWMutex
	snapshot  *models.OptionsData
	fetchedAt time.Time
	resolved  uint64
}

// NewService creates a new income service
func NewService(
	backend interfaces.BackendClient,
	store interfaces.AssumptionStore,
	defaults models.PremiumAssumptions,
	logger *common.Logger,
) *Service {
	return &Service{
		backend:  backend,
		store:    store,
		defaults: defaults.Clone(),
		logger:   logger,
		now:      time.Now,
	}
}

// DefaultAssumptions builds the session starting point from config.
func DefaultAssumptions(cfg common.IncomeConfig) models.PremiumAssumptions {
	return models.PremiumAssumptions{
		DefaultPremium: cfg.DefaultPremium,
		SymbolPremiums: map[string]float64{},
		Delta:          cfg.Delta,
		WeeksPerYear:   cfg.WeeksPerYear,
	}
}

// Assumptions returns a copy of the current session assumptions
func (s *Service) Assumptions(ctx context.Context) (models.PremiumAssumptions, error) {
	s.assumptionsMu.Lock()
	defer s.assumptionsMu.Unlock()
	return s.loadAssumptions(ctx)
}

func (s *Service) loadAssumptions(ctx context.Context) (models.PremiumAssumptions, error) {
	a, err := s.store.GetAssumptions(ctx)
	if errors.Is(err, interfaces.ErrNotFound) {
		return s.defaults.Clone(), nil
	}
	if err != nil {
		return models.PremiumAssumptions{}, fmt.Errorf("failed to load assumptions: %w", err)
	}
	return a.Clone(), nil
}

// UpdateAssumptions applies a user edit and returns the resulting assumptions
func (s *Service) UpdateAssumptions(ctx context.Context, patch models.AssumptionsPatch) (models.PremiumAssumptions, error) {
	if err := validatePatch(patch); err != nil {
		return models.PremiumAssumptions{}, err
	}

	s.assumptionsMu.Lock()
	defer s.assumptionsMu.Unlock()

	a, err := s.loadAssumptions(ctx)
	if err != nil {
		return models.PremiumAssumptions{}, err
	}

	if patch.DefaultPremium != nil {
		a.DefaultPremium = *patch.DefaultPremium
	}
	if patch.Delta != nil {
		a.Delta = *patch.Delta
	}
	if patch.WeeksPerYear != nil {
		a.WeeksPerYear = *patch.WeeksPerYear
	}
	a.MergeSymbolPremiums(patch.SymbolPremiums)
	// Only an explicit user edit may remove an override.
	for _, sym := range patch.RemoveSymbols {
		delete(a.SymbolPremiums, models.NormalizeSymbol(sym))
	}

	if err := s.store.SaveAssumptions(ctx, a); err != nil {
		return models.PremiumAssumptions{}, fmt.Errorf("failed to save assumptions: %w", err)
	}

	s.logger.Debug().
		Float64("default_premium", a.DefaultPremium).
		Int("overrides", len(a.SymbolPremiums)).
		Int("weeks_per_year", a.WeeksPerYear).
		Msg("Premium assumptions updated")
	return a.Clone(), nil
}

func validatePatch(p models.AssumptionsPatch) error {
	if p.DefaultPremium != nil && *p.DefaultPremium < 0 {
		return fmt.Errorf("%w: default_premium must not be negative", ErrInvalidAssumptions)
	}
	for sym, v := range p.SymbolPremiums {
		if models.NormalizeSymbol(sym) == "" {
			return fmt.Errorf("%w: symbol_premiums has an empty symbol", ErrInvalidAssumptions)
		}
		if v < 0 {
			return fmt.Errorf("%w: premium for %s must not be negative", ErrInvalidAssumptions, sym)
		}
	}
	if p.Delta != nil && (*p.Delta < 0 || *p.Delta > 100) {
		return fmt.Errorf("%w: delta must be between 0 and 100", ErrInvalidAssumptions)
	}
	if p.WeeksPerYear != nil && (*p.WeeksPerYear < 1 || *p.WeeksPerYear > 52) {
		return fmt.Errorf("%w: weeks_per_year must be between 1 and 52", ErrInvalidAssumptions)
	}
	return nil
}

// Refresh fetches a fresh snapshot from the backend using the current
// assumptions. A failed fetch leaves the previous snapshot in place.
func (s *Service) Refresh(ctx context.Context) (*models.Projection, error) {
	a, err := s.Assumptions(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.backend.IncomeProjection(ctx, a)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Income projection fetch failed, keeping last snapshot")
		return nil, err
	}

	// Whichever response resolves last wins, regardless of issue order.
	s.mu.Lock()
	s.snapshot = data
	s.fetchedAt = s.now()
	s.resolved++
	seq := s.resolved
	s.mu.Unlock()

	if err := s.mergeServerPremiums(ctx, data.Params.SymbolPremiums); err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint64("resolve_seq", seq).
		Int("accounts", len(data.Accounts)).
		Int("symbols", len(data.Symbols)).
		Msg("Income snapshot refreshed")

	return s.Projection(ctx, interfaces.SortRequest{}, interfaces.SortRequest{})
}

// mergeServerPremiums folds persisted backend overrides into the session
// without deleting keys the response did not mention.
func (s *Service) mergeServerPremiums(ctx context.Context, server map[string]float64) error {
	if len(server) == 0 {
		return nil
	}

	s.assumptionsMu.Lock()
	defer s.assumptionsMu.Unlock()

	a, err := s.loadAssumptions(ctx)
	if err != nil {
		return err
	}
	a.MergeSymbolPremiums(server)
	if err := s.store.SaveAssumptions(ctx, a); err != nil {
		return fmt.Errorf("failed to save merged assumptions: %w", err)
	}
	return nil
}

// Projection recomputes all income figures from the last snapshot and the
// current assumptions. The first call of a session fetches the snapshot.
func (s *Service) Projection(ctx context.Context, symbolSort, holdingSort interfaces.SortRequest) (*models.Projection, error) {
	s.mu.RLock()
	data, fetchedAt := s.snapshot, s.fetchedAt
	s.mu.RUnlock()

	if data == nil {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		data, fetchedAt = s.snapshot, s.fetchedAt
		s.mu.RUnlock()
	}

	a, err := s.Assumptions(ctx)
	if err != nil {
		return nil, err
	}

	proj := Aggregate(data, a, fetchedAt)
	proj.Symbols = SymbolFields.Sort(proj.Symbols, symbolSort.Field, sorting.ParseDirection(symbolSort.Direction))
	for i := range proj.Accounts {
		proj.Accounts[i].Holdings = HoldingFields.Sort(
			proj.Accounts[i].Holdings, holdingSort.Field, sorting.ParseDirection(holdingSort.Direction))
	}
	return proj, nil
}

// Chart renders yearly income per symbol as PNG
func (s *Service) Chart(ctx context.Context) ([]byte, error) {
	proj, err := s.Projection(ctx, interfaces.SortRequest{Field: "yearly_income", Direction: "desc"}, interfaces.SortRequest{})
	if err != nil {
		return nil, err
	}
	return RenderIncomeChart(proj.Symbols)
}

// Ensure Service implements IncomeService
var _ interfaces.IncomeService = (*Service)(nil)
