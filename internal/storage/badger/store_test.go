package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testLogger(), "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *common.Logger {
	return common.NewLogger("error")
}

func f64(v float64) *float64 { return &v }

// --- Store tests ---

func TestStore_OpenCloseInMemory(t *testing.T) {
	store, err := NewStore(testLogger(), "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_OpenCloseOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badger")
	store, err := NewStore(testLogger(), path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}

// --- Assumption storage tests ---

func TestAssumptionStorage_NotFoundThenSave(t *testing.T) {
	s := NewAssumptionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	if _, err := s.GetAssumptions(ctx); err != interfaces.ErrNotFound {
		t.Fatalf("GetAssumptions on empty store = %v, want ErrNotFound", err)
	}

	a := models.PremiumAssumptions{
		DefaultPremium: 60,
		SymbolPremiums: map[string]float64{"AAPL": 0, "MSFT": 72.5},
		Delta:          10,
		WeeksPerYear:   50,
	}
	if err := s.SaveAssumptions(ctx, a); err != nil {
		t.Fatalf("SaveAssumptions failed: %v", err)
	}

	got, err := s.GetAssumptions(ctx)
	if err != nil {
		t.Fatalf("GetAssumptions failed: %v", err)
	}
	if got.DefaultPremium != 60 || got.WeeksPerYear != 50 || got.Delta != 10 {
		t.Errorf("GetAssumptions = %+v", got)
	}
	// An explicit zero override survives the round trip
	if v, ok := got.SymbolPremiums["AAPL"]; !ok || v != 0 {
		t.Errorf("AAPL override = %v (present %v), want explicit 0", v, ok)
	}
	if got.SymbolPremiums["MSFT"] != 72.5 {
		t.Errorf("MSFT override = %v, want 72.5", got.SymbolPremiums["MSFT"])
	}
}

func TestAssumptionStorage_SaveIsolatesCallerMap(t *testing.T) {
	s := NewAssumptionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	a := models.PremiumAssumptions{SymbolPremiums: map[string]float64{"AAPL": 50}, WeeksPerYear: 50}
	if err := s.SaveAssumptions(ctx, a); err != nil {
		t.Fatal(err)
	}
	a.SymbolPremiums["AAPL"] = 1

	got, _ := s.GetAssumptions(ctx)
	if got.SymbolPremiums["AAPL"] != 50 {
		t.Errorf("stored override changed through caller map: %v", got.SymbolPremiums["AAPL"])
	}
}

// --- Position storage tests ---

func TestPositionStorage_ReplaceKeepsOrder(t *testing.T) {
	s := NewPositionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	first := []models.MonitoredPosition{
		{ID: "3", Symbol: "MSFT"},
		{ID: "1", Symbol: "AAPL", OriginalPremium: f64(4.5), CurrentPremium: f64(0)},
		{ID: "2", Symbol: "NVDA"},
	}
	if err := s.ReplacePositions(ctx, first); err != nil {
		t.Fatalf("ReplacePositions failed: %v", err)
	}

	got, err := s.ListPositions(ctx)
	if err != nil {
		t.Fatalf("ListPositions failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "3" || got[1].ID != "1" || got[2].ID != "2" {
		t.Fatalf("ListPositions order = %v", got)
	}
	// A zero current premium stays distinct from an absent one
	if got[1].CurrentPremium == nil || *got[1].CurrentPremium != 0 {
		t.Errorf("CurrentPremium = %v, want pointer to 0", got[1].CurrentPremium)
	}
	if got[0].CurrentPremium != nil {
		t.Errorf("CurrentPremium = %v, want nil", *got[0].CurrentPremium)
	}

	// The latest resolved listing replaces the view
	if err := s.ReplacePositions(ctx, []models.MonitoredPosition{{ID: "2", Symbol: "NVDA"}}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.ListPositions(ctx)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("after replace = %v", got)
	}
}

func TestPositionStorage_PutUpserts(t *testing.T) {
	s := NewPositionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	if err := s.PutPosition(ctx, models.MonitoredPosition{ID: "1", Symbol: "AAPL", Contracts: 1}); err != nil {
		t.Fatalf("PutPosition failed: %v", err)
	}
	if err := s.PutPosition(ctx, models.MonitoredPosition{ID: "2", Symbol: "MSFT", Contracts: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutPosition(ctx, models.MonitoredPosition{ID: "1", Symbol: "AAPL", Contracts: 3}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(got))
	}
	if got[0].ID != "1" || got[0].Contracts != 3 {
		t.Errorf("first position = %+v, want ID 1 with 3 contracts in original slot", got[0])
	}
}

func TestPositionStorage_KeyFallbackWithoutID(t *testing.T) {
	s := NewPositionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	p := models.MonitoredPosition{Symbol: "AAPL", StrikePrice: 180, OptionType: models.OptionTypeCall, ExpirationDate: "2026-03-20"}
	if err := s.PutPosition(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.PutPosition(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListPositions(ctx)
	if len(got) != 1 {
		t.Errorf("expected the same contract to upsert, got %d positions", len(got))
	}
}

func TestPositionStorage_SameContractInTwoAccounts(t *testing.T) {
	s := NewPositionStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	brokerage := models.MonitoredPosition{Symbol: "AAPL", StrikePrice: 180, OptionType: models.OptionTypeCall, ExpirationDate: "2026-03-20", AccountName: "Brokerage"}
	roth := brokerage
	roth.AccountName = "Roth IRA"

	if err := s.ReplacePositions(ctx, []models.MonitoredPosition{brokerage, roth}); err != nil {
		t.Fatalf("ReplacePositions failed: %v", err)
	}
	got, err := s.ListPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both accounts kept, got %d positions", len(got))
	}
	if got[0].AccountName != "Brokerage" || got[1].AccountName != "Roth IRA" {
		t.Errorf("ListPositions = %+v", got)
	}
}

// --- Seen alert storage tests ---

func TestSeenStorage_MarkSeen(t *testing.T) {
	s := NewSeenStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	isNew, err := s.MarkSeen(ctx, "17|80")
	if err != nil || !isNew {
		t.Fatalf("first MarkSeen = %v, %v; want true, nil", isNew, err)
	}
	isNew, err = s.MarkSeen(ctx, "17|80")
	if err != nil || isNew {
		t.Fatalf("second MarkSeen = %v, %v; want false, nil", isNew, err)
	}
	isNew, _ = s.MarkSeen(ctx, "17|85")
	if !isNew {
		t.Error("different threshold should be new")
	}
}

// --- Session store tests ---

func TestSessionStore_InMemory(t *testing.T) {
	cfg := common.NewDefaultConfig()
	ss, err := NewSessionStore(testLogger(), cfg)
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	defer ss.Close()

	ctx := context.Background()
	if err := ss.Assumptions().SaveAssumptions(ctx, models.PremiumAssumptions{DefaultPremium: 10, WeeksPerYear: 50}); err != nil {
		t.Fatal(err)
	}
	if _, err := ss.SeenAlerts().MarkSeen(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := ss.Positions().PutPosition(ctx, models.MonitoredPosition{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	list, _ := ss.Positions().ListPositions(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 position, got %d", len(list))
	}
}

func TestSessionStore_PersistsOnDisk(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "session")
	ctx := context.Background()

	ss, err := NewSessionStore(testLogger(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ss.Assumptions().SaveAssumptions(ctx, models.PremiumAssumptions{DefaultPremium: 42, WeeksPerYear: 48}); err != nil {
		t.Fatal(err)
	}
	if err := ss.Close(); err != nil {
		t.Fatal(err)
	}

	ss, err = NewSessionStore(testLogger(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Close()
	got, err := ss.Assumptions().GetAssumptions(ctx)
	if err != nil {
		t.Fatalf("GetAssumptions after reopen: %v", err)
	}
	if got.DefaultPremium != 42 || got.WeeksPerYear != 48 {
		t.Errorf("reopened assumptions = %+v", got)
	}
}
