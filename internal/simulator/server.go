package simulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serve os dois feeds simulados com os mesmos formatos de wire dos
// providers reais, mais um WS de placar ao vivo.
type Server struct {
	log   *zap.Logger
	slate *Slate
	hub   *Hub
}

func NewServer(log *zap.Logger, slate *Slate, hub *Hub) *Server {
	return &Server{log: log, slate: slate, hub: hub}
}

// Router retorna o mux com as rotas dos feeds simulados
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/sports/basketball_nba/odds", s.odds) // GET (formato The Odds API)
	mux.HandleFunc("/v1/", s.scoreboard)                     // GET /v1/{YYYYMMDD}/scoreboard.json
	mux.HandleFunc("/ws", s.ws)
	return mux
}

func (s *Server) odds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.slate.OddsEvents())
}

func (s *Server) scoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /v1/{YYYYMMDD}/scoreboard.json
	rest := strings.TrimPrefix(r.URL.Path, "/v1/")
	day, tail, _ := strings.Cut(rest, "/")
	if tail != "scoreboard.json" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	date, err := time.Parse("20060102", day)
	if err != nil {
		http.Error(w, "bad date", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.slate.Scoreboard(date))
}

func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	id := fmt.Sprintf("%d", time.Now().UnixNano())
	c := &ClientConn{ID: id, Conn: conn}
	s.hub.Add(c)

	// mantém a conexão viva e remove o cliente ao desconectar
	go func() {
		defer func() {
			s.hub.Remove(id)
			_ = conn.Close()
		}()
		_ = conn.SetReadDeadline(time.Time{})
		for {
			// lê e descarta mensagens do cliente para manter o socket limpo
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RunScoreTicker emite os placares ao vivo pro hub no intervalo dado
func (s *Server) RunScoreTicker(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, g := range s.slate.LiveScores() {
				s.hub.Broadcast(g)
			}
		}
	}
}
