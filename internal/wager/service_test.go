package wager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
)

type fakeGames struct{ games map[string]*catalog.Game }

func (f *fakeGames) FindByExternalID(_ context.Context, id string) (*catalog.Game, error) {
	return f.games[id], nil
}

// fakeStore replica o contrato do store: débito no registro, transição
// condicional no cancelamento.
type fakeStore struct {
	wagers   map[string]*Wager
	balances map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{wagers: map[string]*Wager{}, balances: map[string]int64{"u1": 100_000}}
}

func (f *fakeStore) Get(_ context.Context, id string) (*Wager, error) { return f.wagers[id], nil }

func (f *fakeStore) FindByUser(_ context.Context, userID string) ([]*Wager, error) {
	var out []*Wager
	for _, w := range f.wagers {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) PlacePending(_ context.Context, w *Wager) error {
	if f.balances[w.UserID] < w.StakeCents {
		return ErrInsufficientBalance
	}
	f.balances[w.UserID] -= w.StakeCents
	cp := *w
	f.wagers[w.ID] = &cp
	return nil
}

func (f *fakeStore) Cancel(_ context.Context, id string, _ time.Time) (bool, error) {
	w := f.wagers[id]
	if w == nil || w.Status != StatusPending {
		return false, nil
	}
	w.Status = StatusCancelled
	f.balances[w.UserID] += w.StakeCents
	return true, nil
}

func openGame(start time.Time) *catalog.Game {
	return &catalog.Game{
		ExternalID: "odds-1",
		HomeTeam:   "Lakers",
		AwayTeam:   "Celtics",
		StartTime:  start,
		Status:     catalog.StatusScheduled,
		Odds: catalog.Odds{
			Moneyline: catalog.Moneyline{Home: -150, Away: 130},
			Spread:    catalog.Spread{Home: -3.5, HomeOdds: -110, Away: 3.5, AwayOdds: -105},
			Total:     catalog.Total{Over: 220.5, OverOdds: -110, Under: 220.5, UnderOdds: -110},
		},
	}
}

func newService(g *catalog.Game) (*Service, *fakeStore) {
	st := newFakeStore()
	now := g.StartTime.Add(-time.Hour)
	svc := &Service{
		Log:   zap.NewNop(),
		Games: &fakeGames{games: map[string]*catalog.Game{g.ExternalID: g}},
		Store: st,
		Now:   func() time.Time { return now },
	}
	return svc, st
}

func TestPlaceFreezesQuote(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	g := openGame(start)
	svc, st := newService(g)

	w, err := svc.Place(context.Background(), PlaceRequest{
		UserID: "u1", GameID: "odds-1", BetType: Spread, Selection: PickAway, StakeCents: 5_000,
	})
	require.NoError(t, err)

	assert.Equal(t, -105, w.OddsAtPlacement)
	assert.Equal(t, 3.5, w.LineAtPlacement)
	assert.Equal(t, StatusPending, w.Status)
	assert.Equal(t, int64(95_000), st.balances["u1"])

	// odds mudam depois: a aposta mantém a cotação congelada
	g.Odds.Spread.Away = 7.5
	got, err := st.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.LineAtPlacement)
}

func TestPlaceValidation(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc, _ := newService(openGame(start))
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceRequest{UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickHome, StakeCents: 0})
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = svc.Place(ctx, PlaceRequest{UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickOver, StakeCents: 1})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = svc.Place(ctx, PlaceRequest{UserID: "u1", GameID: "nope", BetType: Moneyline, Selection: PickHome, StakeCents: 1})
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = svc.Place(ctx, PlaceRequest{UserID: "u1", GameID: "odds-1", BetType: Total, Selection: PickHome, StakeCents: 1})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestPlaceClosedGame(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	g := openGame(start)
	svc, _ := newService(g)
	ctx := context.Background()
	req := PlaceRequest{UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickHome, StakeCents: 1_000}

	// depois do tipoff
	svc.Now = func() time.Time { return start.Add(time.Minute) }
	_, err := svc.Place(ctx, req)
	assert.ErrorIs(t, err, ErrGameNotOpen)

	// jogo em andamento
	svc.Now = func() time.Time { return start.Add(-time.Hour) }
	g.Status = catalog.StatusInProgress
	_, err = svc.Place(ctx, req)
	assert.ErrorIs(t, err, ErrGameNotOpen)
}

func TestPlaceUnquotedMarket(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	g := openGame(start)
	g.Odds.Total = catalog.Total{} // totals ainda não cotado
	svc, _ := newService(g)

	_, err := svc.Place(context.Background(), PlaceRequest{
		UserID: "u1", GameID: "odds-1", BetType: Total, Selection: PickOver, StakeCents: 1_000,
	})
	assert.ErrorIs(t, err, ErrOddsUnavailable)
}

func TestPlaceInsufficientBalance(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc, _ := newService(openGame(start))

	_, err := svc.Place(context.Background(), PlaceRequest{
		UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickHome, StakeCents: 200_000,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCancelRefunds(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc, st := newService(openGame(start))
	ctx := context.Background()

	w, err := svc.Place(ctx, PlaceRequest{
		UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickHome, StakeCents: 5_000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(95_000), st.balances["u1"])

	require.NoError(t, svc.Cancel(ctx, w.ID))
	assert.Equal(t, int64(100_000), st.balances["u1"])
	assert.Equal(t, StatusCancelled, st.wagers[w.ID].Status)

	// segundo cancelamento: a aposta já saiu de pending
	assert.ErrorIs(t, svc.Cancel(ctx, w.ID), ErrNotCancellable)
}

func TestCancelAfterStartRejected(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	g := openGame(start)
	svc, st := newService(g)
	ctx := context.Background()

	w, err := svc.Place(ctx, PlaceRequest{
		UserID: "u1", GameID: "odds-1", BetType: Moneyline, Selection: PickHome, StakeCents: 5_000,
	})
	require.NoError(t, err)

	svc.Now = func() time.Time { return start.Add(time.Minute) }
	assert.ErrorIs(t, svc.Cancel(ctx, w.ID), ErrNotCancellable)
	assert.Equal(t, int64(95_000), st.balances["u1"]) // sem estorno
}

func TestCancelUnknownWager(t *testing.T) {
	start := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc, _ := newService(openGame(start))

	assert.ErrorIs(t, svc.Cancel(context.Background(), "nope"), ErrWagerNotFound)
}
