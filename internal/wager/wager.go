package wager

import "time"

// BetType é o mercado apostado.
type BetType string

const (
	Moneyline BetType = "moneyline"
	Spread    BetType = "spread"
	Total     BetType = "total"
)

// Seleções válidas por mercado.
const (
	PickHome  = "home"
	PickAway  = "away"
	PickOver  = "over"
	PickUnder = "under"
)

// Status de uma aposta. pending é o único estado mutável: a aposta sai dele
// no máximo uma vez (liquidação ou cancelamento) — invariante central do engine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusPushed    Status = "pushed"
	StatusCancelled Status = "cancelled"
)

// Wager é uma aposta com odds e linha congeladas no momento do registro.
type Wager struct {
	ID              string
	UserID          string
	GameID          string // ExternalID do jogo no catálogo
	BetType         BetType
	Selection       string  // home | away | over | under
	OddsAtPlacement int     // formato americano, congelado
	LineAtPlacement float64 // só para spread/total; assinada pelo lado escolhido no spread
	StakeCents      int64
	PayoutCents     int64 // crédito total; preenchido na liquidação (0 em perda)
	Status          Status
	PlacedAt        time.Time
	SettledAt       *time.Time // preenchido sse status ∈ {won, lost, pushed, cancelled}
}

// ValidSelection confere se a seleção pertence ao mercado.
func ValidSelection(bt BetType, selection string) bool {
	switch bt {
	case Moneyline, Spread:
		return selection == PickHome || selection == PickAway
	case Total:
		return selection == PickOver || selection == PickUnder
	}
	return false
}
