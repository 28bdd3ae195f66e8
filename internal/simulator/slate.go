package simulator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/courtside/virtual-sportsbook/internal/feed"
)

// pares de times da rodada simulada
var matchups = [][2]string{
	{"Los Angeles Lakers", "Boston Celtics"},
	{"Golden State Warriors", "Phoenix Suns"},
	{"Milwaukee Bucks", "Miami Heat"},
	{"Denver Nuggets", "Dallas Mavericks"},
	{"New York Knicks", "Philadelphia 76ers"},
	{"Oklahoma City Thunder", "Minnesota Timberwolves"},
}

// simGame é um jogo do slate simulado. O status é derivado do relógio: antes
// do tipoff é scheduled, durante a duração é in_progress, depois é final.
type simGame struct {
	id       string
	home     string
	away     string
	commence time.Time
	duration time.Duration

	finalHome int
	finalAway int

	spread float64 // linha do mandante, assinada
	total  float64
}

// Slate é a rodada simulada servida pelo feed-simulator: os mesmos jogos
// alimentam o endpoint de odds, o scoreboard e o WS de placar ao vivo.
type Slate struct {
	mu    sync.Mutex
	rng   *rand.Rand
	games []*simGame
	now   func() time.Time
}

// NewSlate monta a rodada relativa ao instante de criação: dois jogos já
// encerrados, dois em andamento e dois ainda por começar.
func NewSlate(seed int64, now func() time.Time) *Slate {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s := &Slate{rng: rand.New(rand.NewSource(seed)), now: now}

	base := now()
	offsets := []time.Duration{
		-4 * time.Hour, -3 * time.Hour, // encerrados
		-1 * time.Hour, -30 * time.Minute, // em andamento
		2 * time.Hour, 4 * time.Hour, // agendados
	}
	for i, m := range matchups {
		g := &simGame{
			id:        simGameID(i),
			home:      m[0],
			away:      m[1],
			commence:  base.Add(offsets[i]),
			duration:  150 * time.Minute,
			finalHome: 95 + s.rng.Intn(40),
			finalAway: 95 + s.rng.Intn(40),
			spread:    float64(s.rng.Intn(21)-10) - 0.5,
			total:     float64(215+s.rng.Intn(20)) + 0.5,
		}
		s.games = append(s.games, g)
	}
	return s
}

func simGameID(i int) string {
	return fmt.Sprintf("sim-%03d", i+1)
}

func (g *simGame) statusAt(now time.Time) int {
	switch {
	case now.Before(g.commence):
		return feed.StatusCodeScheduled
	case now.Before(g.commence.Add(g.duration)):
		return feed.StatusCodeInProgress
	default:
		return feed.StatusCodeFinal
	}
}

// scoreAt interpola o placar parcial pela fração decorrida do jogo
func (g *simGame) scoreAt(now time.Time) (home, away int) {
	switch g.statusAt(now) {
	case feed.StatusCodeScheduled:
		return 0, 0
	case feed.StatusCodeFinal:
		return g.finalHome, g.finalAway
	}
	frac := float64(now.Sub(g.commence)) / float64(g.duration)
	return int(float64(g.finalHome) * frac), int(float64(g.finalAway) * frac)
}

// OddsEvents serve o payload do provider de odds: só jogos ainda não
// encerrados, um bookmaker com h2h, spreads e totals. As cotações flutuam a
// cada chamada, como num feed de verdade.
func (s *Slate) OddsEvents() []feed.OddsAPIEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []feed.OddsAPIEvent
	for _, g := range s.games {
		if g.statusAt(now) == feed.StatusCodeFinal {
			continue
		}

		homeML, awayML := s.moneyline(g.spread)
		out = append(out, feed.OddsAPIEvent{
			ID:           g.id,
			SportKey:     "basketball_nba",
			CommenceTime: g.commence,
			HomeTeam:     g.home,
			AwayTeam:     g.away,
			Bookmakers: []feed.OddsAPIBookmaker{{
				Key:   "courtside",
				Title: "Courtside Virtual Book",
				Markets: []feed.OddsAPIMarket{
					{Key: feed.MarketH2H, Outcomes: []feed.OddsAPIOutcome{
						{Name: g.home, Price: homeML},
						{Name: g.away, Price: awayML},
					}},
					{Key: feed.MarketSpreads, Outcomes: []feed.OddsAPIOutcome{
						{Name: g.home, Price: s.juice(), Point: g.spread},
						{Name: g.away, Price: s.juice(), Point: -g.spread},
					}},
					{Key: feed.MarketTotals, Outcomes: []feed.OddsAPIOutcome{
						{Name: "Over", Price: s.juice(), Point: g.total},
						{Name: "Under", Price: s.juice(), Point: g.total},
					}},
				},
			}},
		})
	}
	return out
}

// moneyline deriva cotações americanas plausíveis a partir da linha de spread
func (s *Slate) moneyline(spread float64) (home, away float64) {
	// favorito (spread negativo) paga menos
	edge := -spread * 22
	home = clampAmerican(-110 - edge)
	away = clampAmerican(-110 + edge)
	return home, away
}

// juice é a cotação padrão de linha, com variação pequena por chamada
func (s *Slate) juice() float64 {
	return float64(-115 + s.rng.Intn(11)) // -115..-105
}

func clampAmerican(v float64) float64 {
	// a faixa (-100, 100) não existe no formato americano
	if v > -100 && v < 0 {
		return -100
	}
	if v >= 0 && v < 100 {
		return 100
	}
	return v
}

// Scoreboard serve o payload do provider de resultados para a data pedida
func (s *Slate) Scoreboard(date time.Time) feed.ScoreboardResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	day := date.UTC().Format("20060102")
	resp := feed.ScoreboardResponse{Date: day}
	for _, g := range s.games {
		if g.commence.UTC().Format("20060102") != day {
			continue
		}
		home, away := g.scoreAt(now)
		resp.Games = append(resp.Games, feed.ScoreboardGame{
			GameID:    g.id,
			HomeTeam:  g.home,
			AwayTeam:  g.away,
			HomeScore: home,
			AwayScore: away,
			StatusNum: g.statusAt(now),
		})
	}
	return resp
}

// LiveScores retorna os jogos em andamento, usado pelo tick do WS
func (s *Slate) LiveScores() []feed.ScoreboardGame {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []feed.ScoreboardGame
	for _, g := range s.games {
		if g.statusAt(now) != feed.StatusCodeInProgress {
			continue
		}
		home, away := g.scoreAt(now)
		out = append(out, feed.ScoreboardGame{
			GameID:    g.id,
			HomeTeam:  g.home,
			AwayTeam:  g.away,
			HomeScore: home,
			AwayScore: away,
			StatusNum: feed.StatusCodeInProgress,
		})
	}
	return out
}
