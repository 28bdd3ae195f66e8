package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/api/dto"
	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/settlement"
	"github.com/courtside/virtual-sportsbook/internal/store"
	"github.com/courtside/virtual-sportsbook/internal/wager"
)

// ---- fakes ----

type fakeCatalog struct{ games map[string]*catalog.Game }

func (f *fakeCatalog) FindByExternalID(_ context.Context, id string) (*catalog.Game, error) {
	return f.games[id], nil
}

func (f *fakeCatalog) FindByStatus(_ context.Context, st catalog.GameStatus) ([]*catalog.Game, error) {
	var out []*catalog.Game
	for _, g := range f.games {
		if g.Status == st {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindActive(ctx context.Context) ([]*catalog.Game, error) {
	var out []*catalog.Game
	for _, g := range f.games {
		if !g.Terminal() {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeUsers struct{}

func (fakeUsers) GetOrCreateUser(_ context.Context, userID string) (*store.User, error) {
	return &store.User{ID: userID, BalanceCents: store.StartingBalanceCents}, nil
}

type fakeWagerStore struct {
	wagers   map[string]*wager.Wager
	balances map[string]int64
}

func (f *fakeWagerStore) Get(_ context.Context, id string) (*wager.Wager, error) {
	return f.wagers[id], nil
}

func (f *fakeWagerStore) FindByUser(_ context.Context, userID string) ([]*wager.Wager, error) {
	var out []*wager.Wager
	for _, w := range f.wagers {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWagerStore) PlacePending(_ context.Context, w *wager.Wager) error {
	if f.balances[w.UserID] < w.StakeCents {
		return wager.ErrInsufficientBalance
	}
	f.balances[w.UserID] -= w.StakeCents
	f.wagers[w.ID] = w
	return nil
}

func (f *fakeWagerStore) Cancel(_ context.Context, id string, _ time.Time) (bool, error) {
	w := f.wagers[id]
	if w == nil || w.Status != wager.StatusPending {
		return false, nil
	}
	w.Status = wager.StatusCancelled
	f.balances[w.UserID] += w.StakeCents
	return true, nil
}

type fakeAdmin struct{ ingests int }

func (f *fakeAdmin) RunIngestionCycle(context.Context) error {
	f.ingests++
	return nil
}

type fakeSettler struct {
	summary settlement.Summary
	err     error
}

func (f *fakeSettler) SettleGame(_ context.Context, gameID string) (settlement.Summary, error) {
	if f.err != nil {
		return settlement.Summary{}, f.err
	}
	s := f.summary
	s.GameID = gameID
	return s, nil
}

func newTestServer() (*Server, *fakeCatalog, *fakeWagerStore, *fakeAdmin, *fakeSettler) {
	start := time.Now().UTC().Add(2 * time.Hour)
	games := &fakeCatalog{games: map[string]*catalog.Game{
		"odds-1": {
			ExternalID: "odds-1",
			HomeTeam:   "Lakers",
			AwayTeam:   "Celtics",
			StartTime:  start,
			Status:     catalog.StatusScheduled,
			Odds: catalog.Odds{
				Moneyline: catalog.Moneyline{Home: -150, Away: 130},
			},
		},
	}}
	st := &fakeWagerStore{
		wagers:   map[string]*wager.Wager{},
		balances: map[string]int64{"u1": store.StartingBalanceCents},
	}
	svc := &wager.Service{Log: zap.NewNop(), Games: games, Store: st}
	admin := &fakeAdmin{}
	settler := &fakeSettler{}
	srv := NewServer(zap.NewNop(), svc, games, fakeUsers{}, admin, settler)
	return srv, games, st, admin, settler
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, r)
	return rec
}

// ---- testes ----

func TestPlaceWagerEndpoint(t *testing.T) {
	srv, _, st, _, _ := newTestServer()

	rec := doRequest(t, srv, http.MethodPost, "/wagers",
		`{"userId":"u1","gameId":"odds-1","betType":"moneyline","selection":"home","stakeCents":5000}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.WagerID)
	assert.Equal(t, -150, resp.OddsAtPlacement)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(95_000), st.balances["u1"])
}

func TestPlaceWagerErrors(t *testing.T) {
	srv, games, _, _, _ := newTestServer()

	rec := doRequest(t, srv, http.MethodPost, "/wagers", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/wagers",
		`{"userId":"u1","gameId":"nope","betType":"moneyline","selection":"home","stakeCents":100}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/wagers",
		`{"userId":"u1","gameId":"odds-1","betType":"moneyline","selection":"home","stakeCents":999999}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	games.games["odds-1"].Status = catalog.StatusInProgress
	rec = doRequest(t, srv, http.MethodPost, "/wagers",
		`{"userId":"u1","gameId":"odds-1","betType":"moneyline","selection":"home","stakeCents":100}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelWagerEndpoint(t *testing.T) {
	srv, _, st, _, _ := newTestServer()

	rec := doRequest(t, srv, http.MethodPost, "/wagers",
		`{"userId":"u1","gameId":"odds-1","betType":"moneyline","selection":"home","stakeCents":5000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed dto.WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	rec = doRequest(t, srv, http.MethodDelete, "/wagers/"+placed.WagerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(100_000), st.balances["u1"])

	// cancelar de novo: a aposta já saiu de pending
	rec = doRequest(t, srv, http.MethodDelete, "/wagers/"+placed.WagerID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetWagerEndpoint(t *testing.T) {
	srv, _, st, _, _ := newTestServer()
	st.wagers["w1"] = &wager.Wager{ID: "w1", UserID: "u1", GameID: "odds-1", Status: wager.StatusPending}

	rec := doRequest(t, srv, http.MethodGet, "/wagers/w1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/wagers/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	srv, _, st, _, _ := newTestServer()
	st.wagers["w1"] = &wager.Wager{ID: "w1", UserID: "u1", GameID: "odds-1", Status: wager.StatusWon}

	rec := doRequest(t, srv, http.MethodGet, "/users/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var u dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, store.StartingBalanceCents, u.BalanceCents)

	rec = doRequest(t, srv, http.MethodGet, "/users/u1/wagers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ws []dto.WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ws))
	assert.Len(t, ws, 1)
}

func TestListGamesEndpoint(t *testing.T) {
	srv, games, _, _, _ := newTestServer()
	games.games["odds-2"] = &catalog.Game{ExternalID: "odds-2", Status: catalog.StatusFinished}

	rec := doRequest(t, srv, http.MethodGet, "/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var active []dto.GameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Len(t, active, 1) // só o scheduled

	rec = doRequest(t, srv, http.MethodGet, "/games?status=finished", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var finished []dto.GameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &finished))
	assert.Len(t, finished, 1)
}

func TestAdminEndpoints(t *testing.T) {
	srv, _, _, admin, settler := newTestServer()
	settler.summary = settlement.Summary{Pending: 2, Settled: 2, Won: 1, Lost: 1}

	rec := doRequest(t, srv, http.MethodPost, "/admin/ingest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, admin.ingests)

	rec = doRequest(t, srv, http.MethodPost, "/admin/settle/odds-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum dto.SettleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "odds-1", sum.GameID)
	assert.Equal(t, 2, sum.Settled)

	settler.err = settlement.ErrGameNotFinished
	rec = doRequest(t, srv, http.MethodPost, "/admin/settle/odds-1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	settler.err = settlement.ErrGameNotFound
	rec = doRequest(t, srv, http.MethodPost, "/admin/settle/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
