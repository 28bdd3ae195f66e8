package dto

import (
	"time"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/wager"
)

// PlaceWagerRequest é o payload de criação de aposta
type PlaceWagerRequest struct {
	UserID     string `json:"userId"`
	GameID     string `json:"gameId"`
	BetType    string `json:"betType"`   // moneyline | spread | total
	Selection  string `json:"selection"` // home | away | over | under
	StakeCents int64  `json:"stakeCents"`
}

// WagerResponse é a projeção pública de uma aposta
type WagerResponse struct {
	WagerID         string     `json:"wagerId"`
	UserID          string     `json:"userId"`
	GameID          string     `json:"gameId"`
	BetType         string     `json:"betType"`
	Selection       string     `json:"selection"`
	OddsAtPlacement int        `json:"oddsAtPlacement"`
	LineAtPlacement float64    `json:"lineAtPlacement,omitempty"`
	StakeCents      int64      `json:"stakeCents"`
	PayoutCents     int64      `json:"payoutCents"`
	Status          string     `json:"status"`
	PlacedAt        time.Time  `json:"placedAt"`
	SettledAt       *time.Time `json:"settledAt,omitempty"`
}

// FromWager converte o modelo interno na projeção da API
func FromWager(w *wager.Wager) WagerResponse {
	return WagerResponse{
		WagerID:         w.ID,
		UserID:          w.UserID,
		GameID:          w.GameID,
		BetType:         string(w.BetType),
		Selection:       w.Selection,
		OddsAtPlacement: w.OddsAtPlacement,
		LineAtPlacement: w.LineAtPlacement,
		StakeCents:      w.StakeCents,
		PayoutCents:     w.PayoutCents,
		Status:          string(w.Status),
		PlacedAt:        w.PlacedAt,
		SettledAt:       w.SettledAt,
	}
}

// GameResponse é a projeção pública de um jogo do catálogo
type GameResponse struct {
	GameID      string       `json:"gameId"`
	HomeTeam    string       `json:"homeTeam"`
	AwayTeam    string       `json:"awayTeam"`
	StartTime   time.Time    `json:"startTime"`
	Status      string       `json:"status"`
	HomeScore   int          `json:"homeScore"`
	AwayScore   int          `json:"awayScore"`
	Unconfirmed bool         `json:"unconfirmed,omitempty"`
	Odds        catalog.Odds `json:"odds"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// FromGame converte o modelo interno na projeção da API
func FromGame(g *catalog.Game) GameResponse {
	return GameResponse{
		GameID:      g.ExternalID,
		HomeTeam:    g.HomeTeam,
		AwayTeam:    g.AwayTeam,
		StartTime:   g.StartTime,
		Status:      string(g.Status),
		HomeScore:   g.HomeScore,
		AwayScore:   g.AwayScore,
		Unconfirmed: g.Unconfirmed,
		Odds:        g.Odds,
		LastUpdated: g.LastUpdated,
	}
}

// UserResponse é a projeção pública de um usuário e seu saldo
type UserResponse struct {
	UserID             string `json:"userId"`
	BalanceCents       int64  `json:"balanceCents"`
	WagersPlaced       int    `json:"wagersPlaced"`
	WagersWon          int    `json:"wagersWon"`
	WagersLost         int    `json:"wagersLost"`
	TotalStakedCents   int64  `json:"totalStakedCents"`
	TotalReturnedCents int64  `json:"totalReturnedCents"`
}

// SettleResponse resume uma rodada de liquidação disparada pela API admin
type SettleResponse struct {
	GameID  string `json:"gameId"`
	Pending int    `json:"pending"`
	Settled int    `json:"settled"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Won     int    `json:"won"`
	Lost    int    `json:"lost"`
	Pushed  int    `json:"pushed"`
}

// ErrorResponse é o envelope de erro da API
type ErrorResponse struct {
	Error string `json:"error"`
}
