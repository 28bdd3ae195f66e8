package topics

const (
	// Jogos
	GameFinished = "game_finished"

	// Apostas
	WagerSettled = "wager_settled"

	// Jogos encerrados sem placar confiável, para revisão de operador
	ManualReview = "game_manual_review"
)
