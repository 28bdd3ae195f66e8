package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/api/dto"
	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/settlement"
	"github.com/courtside/virtual-sportsbook/internal/store"
	"github.com/courtside/virtual-sportsbook/internal/wager"
)

// Catalog é a visão de catálogo exposta na API
type Catalog interface {
	FindByExternalID(ctx context.Context, externalID string) (*catalog.Game, error)
	FindByStatus(ctx context.Context, status catalog.GameStatus) ([]*catalog.Game, error)
	FindActive(ctx context.Context) ([]*catalog.Game, error)
}

// Users é a visão de usuários exposta na API
type Users interface {
	GetOrCreateUser(ctx context.Context, userID string) (*store.User, error)
}

// Admin agrupa os gatilhos manuais do engine usados pela API de operação
type Admin interface {
	RunIngestionCycle(ctx context.Context) error
}

// Settler dispara a liquidação de um jogo específico
type Settler interface {
	SettleGame(ctx context.Context, gameID string) (settlement.Summary, error)
}

// Server expõe os endpoints HTTP do engine: apostas, catálogo e operação
type Server struct {
	log     *zap.Logger
	wagers  *wager.Service
	games   Catalog
	users   Users
	admin   Admin
	settler Settler
}

// NewServer instancia o servidor HTTP do engine
func NewServer(log *zap.Logger, w *wager.Service, g Catalog, u Users, a Admin, s Settler) *Server {
	return &Server{log: log, wagers: w, games: g, users: u, admin: a, settler: s}
}

// Router retorna o mux HTTP com as rotas da API
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wagers", s.placeWager)        // POST
	mux.HandleFunc("/wagers/", s.wagerByID)        // GET | DELETE /wagers/{id}
	mux.HandleFunc("/users/", s.userRoutes)        // GET /users/{id} | /users/{id}/wagers
	mux.HandleFunc("/games", s.listGames)          // GET ?status=...
	mux.HandleFunc("/games/", s.getGame)           // GET /games/{id}
	mux.HandleFunc("/admin/ingest", s.ingest)      // POST
	mux.HandleFunc("/admin/settle/", s.settleGame) // POST /admin/settle/{gameId}
	return mux
}

func (s *Server) placeWager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.GameID == "" || req.BetType == "" || req.Selection == "" || req.StakeCents <= 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	placed, err := s.wagers.Place(r.Context(), wager.PlaceRequest{
		UserID:     req.UserID,
		GameID:     req.GameID,
		BetType:    wager.BetType(req.BetType),
		Selection:  req.Selection,
		StakeCents: req.StakeCents,
	})
	if err != nil {
		s.writeWagerError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, dto.FromWager(placed))
}

func (s *Server) wagerByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/wagers/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "wagerId required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		wg, err := s.wagers.Store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if wg == nil {
			writeError(w, http.StatusNotFound, "wager not found")
			return
		}
		writeJSON(w, dto.FromWager(wg))

	case http.MethodDelete:
		if err := s.wagers.Cancel(r.Context(), id); err != nil {
			s.writeWagerError(w, err)
			return
		}
		writeJSON(w, map[string]string{"wagerId": id, "status": string(wager.StatusCancelled)})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// userRoutes atende GET /users/{id} e GET /users/{id}/wagers
func (s *Server) userRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	userID, sub, _ := strings.Cut(rest, "/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	switch sub {
	case "":
		u, err := s.users.GetOrCreateUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, dto.UserResponse{
			UserID:             u.ID,
			BalanceCents:       u.BalanceCents,
			WagersPlaced:       u.WagersPlaced,
			WagersWon:          u.WagersWon,
			WagersLost:         u.WagersLost,
			TotalStakedCents:   u.TotalStakedCents,
			TotalReturnedCents: u.TotalReturnedCents,
		})

	case "wagers":
		ws, err := s.wagers.Store.FindByUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]dto.WagerResponse, 0, len(ws))
		for _, wg := range ws {
			out = append(out, dto.FromWager(wg))
		}
		writeJSON(w, out)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		games []*catalog.Game
		err   error
	)
	if st := r.URL.Query().Get("status"); st != "" {
		games, err = s.games.FindByStatus(r.Context(), catalog.GameStatus(st))
	} else {
		games, err = s.games.FindActive(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]dto.GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, dto.FromGame(g))
	}
	writeJSON(w, out)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/games/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "gameId required")
		return
	}
	g, err := s.games.FindByExternalID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, dto.FromGame(g))
}

// ingest dispara um ciclo de ingestão fora do agendamento. Mesma rotina do
// scheduler; rodadas concorrentes são seguras porque todo passo é idempotente.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.admin.RunIngestionCycle(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) settleGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID := strings.TrimPrefix(r.URL.Path, "/admin/settle/")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "gameId required")
		return
	}

	sum, err := s.settler.SettleGame(r.Context(), gameID)
	switch {
	case errors.Is(err, settlement.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, settlement.ErrGameNotFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, dto.SettleResponse{
		GameID:  sum.GameID,
		Pending: sum.Pending,
		Settled: sum.Settled,
		Skipped: sum.Skipped,
		Failed:  sum.Failed,
		Won:     sum.Won,
		Lost:    sum.Lost,
		Pushed:  sum.Pushed,
	})
}

// writeWagerError mapeia os erros do serviço de apostas em status HTTP
func (s *Server) writeWagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wager.ErrGameNotFound), errors.Is(err, wager.ErrWagerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wager.ErrInvalidStake),
		errors.Is(err, wager.ErrInvalidSelection),
		errors.Is(err, wager.ErrOddsUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wager.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, wager.ErrGameNotOpen), errors.Is(err, wager.ErrNotCancellable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("wager request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: msg})
}
