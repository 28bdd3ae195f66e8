package events

import "time"

// Evento publicado quando um jogo é encerrado pela janela de tolerância
// sem resultado do feed. As apostas viram push e o jogo fica pendente de operador.
type ManualReviewFlagged struct {
	GameID     string    `json:"game_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	StartTime  time.Time `json:"start_time"`
	Reason     string    `json:"reason"` // ex: "grace_window_expired"
	FlaggedAt  time.Time `json:"flagged_at"`
	WagersPush int       `json:"wagers_pushed"`
}
