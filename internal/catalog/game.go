package catalog

import "time"

// GameStatus é o estado de um jogo no catálogo interno.
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
	StatusCancelled  GameStatus = "cancelled"
)

// Moneyline guarda as cotações de vencedor direto em formato americano.
type Moneyline struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Spread guarda a linha de handicap e as cotações de cada lado.
// A linha é assinada pelo próprio lado: favorito -3.5, azarão +3.5.
type Spread struct {
	Home     float64 `json:"home"`
	HomeOdds int     `json:"home_odds"`
	Away     float64 `json:"away"`
	AwayOdds int     `json:"away_odds"`
}

// Total guarda a linha de pontos combinados e as cotações de over/under.
type Total struct {
	Over      float64 `json:"over"`
	OverOdds  int     `json:"over_odds"`
	Under     float64 `json:"under"`
	UnderOdds int     `json:"under_odds"`
}

// Odds agrupa os três mercados cotados de um jogo.
type Odds struct {
	Moneyline Moneyline `json:"moneyline"`
	Spread    Spread    `json:"spread"`
	Total     Total     `json:"total"`
}

// Game é a entidade canônica do catálogo. ExternalID é a chave estável definida
// pelo matcher no primeiro avistamento; os feeds de odds e de resultados usam
// espaços de identificadores distintos para o mesmo evento real.
type Game struct {
	ExternalID  string
	HomeTeam    string
	AwayTeam    string
	StartTime   time.Time
	Status      GameStatus
	HomeScore   int
	AwayScore   int
	Unconfirmed bool // encerrado pela janela de tolerância, placar não confiável
	Odds        Odds
	LastUpdated time.Time
}

// Terminal informa se o jogo saiu do ciclo de vida (não recebe mais mutação de estado).
func (g *Game) Terminal() bool {
	return g.Status == StatusFinished || g.Status == StatusCancelled
}

// OpenForWagers informa se o jogo ainda aceita apostas: só antes do início e
// enquanto o status for scheduled.
func (g *Game) OpenForWagers(now time.Time) bool {
	return g.Status == StatusScheduled && now.Before(g.StartTime)
}

// CanTransition valida a máquina de estados do jogo: avanço monotônico
// scheduled → in_progress → finished, com saída scheduled → cancelled.
func CanTransition(from, to GameStatus) bool {
	switch from {
	case StatusScheduled:
		return to == StatusInProgress || to == StatusFinished || to == StatusCancelled
	case StatusInProgress:
		return to == StatusFinished
	default:
		// finished e cancelled são terminais
		return false
	}
}
