package events

import "time"

// Evento emitido pelo engine após liquidar uma aposta.
type WagerSettled struct {
	WagerID     string    `json:"wager_id"`
	UserID      string    `json:"user_id"`
	GameID      string    `json:"game_id"`
	BetType     string    `json:"bet_type"`  // "moneyline" | "spread" | "total"
	Selection   string    `json:"selection"` // "home" | "away" | "over" | "under"
	Outcome     string    `json:"outcome"`   // "won" | "lost" | "pushed"
	StakeCents  int64     `json:"stake_cents"`
	PayoutCents int64     `json:"payout_cents"` // 0 em derrota; stake em push; stake+lucro em vitória
	SettledAt   time.Time `json:"settled_at"`
}
