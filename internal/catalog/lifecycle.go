package catalog

import (
	"time"

	"github.com/courtside/virtual-sportsbook/internal/feed"
)

// AdvanceFromResult aplica um placar do feed de resultados ao jogo, respeitando
// a máquina de estados. Retorna (finishedNow, changed): finishedNow só é true na
// transição para finished desta chamada — é o gatilho único da liquidação.
//
// Placar final é gravado exatamente uma vez, na entrada em finished; jogos já
// terminais nunca são alterados. Durante in_progress o placar parcial é mantido
// atualizado pra exibição.
func AdvanceFromResult(g *Game, res feed.ResultRecord, now time.Time) (finishedNow bool, changed bool) {
	if g.Terminal() {
		return false, false
	}

	switch res.StatusCode {
	case feed.StatusCodeFinal:
		if !CanTransition(g.Status, StatusFinished) {
			return false, false
		}
		g.Status = StatusFinished
		g.HomeScore = res.HomeScore
		g.AwayScore = res.AwayScore
		g.Unconfirmed = false
		g.LastUpdated = now
		return true, true

	case feed.StatusCodeInProgress:
		moved := g.Status != StatusInProgress
		if moved && !CanTransition(g.Status, StatusInProgress) {
			return false, false
		}
		scoreChanged := g.HomeScore != res.HomeScore || g.AwayScore != res.AwayScore
		if !moved && !scoreChanged {
			return false, false
		}
		g.Status = StatusInProgress
		g.HomeScore = res.HomeScore
		g.AwayScore = res.AwayScore
		g.LastUpdated = now
		return false, true
	}

	return false, false
}

// ShouldForceFinish indica se o jogo estourou a janela de tolerância: nenhum
// update do feed o encerrou e já passou GraceWindow do horário de início.
func ShouldForceFinish(g *Game, now time.Time, grace time.Duration) bool {
	if g.Terminal() {
		return false
	}
	return now.After(g.StartTime.Add(grace))
}

// ForceFinish encerra o jogo sem placar confiável. O flag Unconfirmed muda o
// comportamento da liquidação: toda aposta pendente vira push, nunca se chuta
// um vencedor.
func ForceFinish(g *Game, now time.Time) bool {
	if !CanTransition(g.Status, StatusFinished) {
		return false
	}
	g.Status = StatusFinished
	g.Unconfirmed = true
	g.LastUpdated = now
	return true
}
