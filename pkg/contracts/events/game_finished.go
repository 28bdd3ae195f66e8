package events

import "time"

// Evento publicado no tópico "game_finished" quando um jogo entra no status terminal.
type GameFinished struct {
	GameID      string    `json:"game_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	Unconfirmed bool      `json:"unconfirmed"` // true quando encerrado pela janela de tolerância, sem placar do feed
	FinishedAt  time.Time `json:"finished_at"`
}
