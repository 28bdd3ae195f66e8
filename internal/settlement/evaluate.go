package settlement

import (
	"fmt"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/wager"
)

// Outcome é o resultado da avaliação de uma aposta contra o placar final.
type Outcome int

const (
	Lost Outcome = iota
	Won
	Pushed
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Pushed:
		return "pushed"
	default:
		return "lost"
	}
}

// Evaluate decide o desfecho de uma aposta contra um jogo encerrado.
// Função pura sobre (aposta, placar); não consulta odds atuais do jogo —
// linha e odds valem como foram congeladas no registro.
//
// Regras:
//   - moneyline: ganha se o lado escolhido fez mais pontos; empate → push;
//   - spread: ajusta o placar do próprio lado escolhido com a linha assinada
//     (favorito -3.5, azarão +3.5) e compara com o oponente; igualdade → push;
//   - total: soma dos placares contra a linha; over ganha acima, under abaixo,
//     igualdade exata → push.
func Evaluate(w *wager.Wager, g *catalog.Game) (Outcome, error) {
	home, away := float64(g.HomeScore), float64(g.AwayScore)

	switch w.BetType {
	case wager.Moneyline:
		selected, opponent := home, away
		if w.Selection == wager.PickAway {
			selected, opponent = away, home
		}
		return compare(selected, opponent), nil

	case wager.Spread:
		selected, opponent := home, away
		if w.Selection == wager.PickAway {
			selected, opponent = away, home
		}
		return compare(selected+w.LineAtPlacement, opponent), nil

	case wager.Total:
		combined := home + away
		if w.Selection == wager.PickUnder {
			return compare(w.LineAtPlacement, combined), nil
		}
		return compare(combined, w.LineAtPlacement), nil
	}

	return Lost, fmt.Errorf("unknown bet type %q", w.BetType)
}

func compare(a, b float64) Outcome {
	switch {
	case a > b:
		return Won
	case a < b:
		return Lost
	default:
		return Pushed
	}
}

// ProfitCents calcula o lucro (sem devolver o stake) de uma odd americana,
// em centavos, com truncamento inteiro:
// odd positiva → stake*odd/100; negativa → stake*100/|odd|.
func ProfitCents(stakeCents int64, american int) int64 {
	if american > 0 {
		return stakeCents * int64(american) / 100
	}
	if american < 0 {
		return stakeCents * 100 / int64(-american)
	}
	return 0
}

// PayoutCents é o crédito total numa vitória: stake de volta mais o lucro.
func PayoutCents(stakeCents int64, american int) int64 {
	return stakeCents + ProfitCents(stakeCents, american)
}
