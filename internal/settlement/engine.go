package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/wager"
	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotFinished = errors.New("game not finished")
)

// GameStore é a visão de catálogo que a liquidação precisa.
type GameStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*catalog.Game, error)
}

// WagerStore lista as apostas ainda pendentes de um jogo.
type WagerStore interface {
	FindPendingByGame(ctx context.Context, gameID string) ([]*wager.Wager, error)
}

// Ledger executa a transição de status da aposta e a mutação de saldo pareada
// como uma única unidade atômica. Cada método reconfere status == pending
// dentro da mesma unidade e retorna applied=false se outra execução chegou
// antes — no-op silencioso, não erro.
type Ledger interface {
	SettleWin(ctx context.Context, wagerID string, payoutCents int64) (applied bool, err error)
	SettleLoss(ctx context.Context, wagerID string) (applied bool, err error)
	SettlePush(ctx context.Context, wagerID string) (applied bool, err error)
}

// Publisher emite eventos de liquidação para consumidores externos (leaderboard, UI).
type Publisher interface {
	PublishWagerSettled(ctx context.Context, e events.WagerSettled) error
}

// Summary resume uma passada de liquidação sobre um jogo.
type Summary struct {
	GameID  string
	Pending int // apostas pendentes encontradas
	Settled int // transições aplicadas nesta passada
	Skipped int // já liquidadas por execução concorrente (no-op)
	Failed  int // falhas isoladas, permanecem pendentes pra próxima passada
	Won     int
	Lost    int
	Pushed  int
}

// Engine liquida todas as apostas pendentes de jogos encerrados.
type Engine struct {
	Log    *zap.Logger
	Games  GameStore
	Wagers WagerStore
	Ledger Ledger
	Publ   Publisher // opcional

	OnSettled func(outcome string) // métricas
	OnFailed  func()               // métricas

	Now func() time.Time // opcional; default time.Now
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// SettleGame avalia e liquida toda aposta pendente do jogo informado.
// Idempotente: pode rodar quantas vezes for preciso sobre o mesmo jogo; apostas
// já fora de pending são no-ops. Falha de uma aposta não bloqueia as irmãs —
// ela continua pendente e é retomada na próxima passada.
func (e *Engine) SettleGame(ctx context.Context, gameID string) (Summary, error) {
	sum := Summary{GameID: gameID}

	g, err := e.Games.FindByExternalID(ctx, gameID)
	if err != nil {
		return sum, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if g == nil {
		return sum, ErrGameNotFound
	}
	if g.Status != catalog.StatusFinished {
		return sum, ErrGameNotFinished
	}

	pending, err := e.Wagers.FindPendingByGame(ctx, gameID)
	if err != nil {
		return sum, fmt.Errorf("list pending wagers: %w", err)
	}
	sum.Pending = len(pending)

	for _, w := range pending {
		if err := e.settleOne(ctx, w, g, &sum); err != nil {
			sum.Failed++
			if e.OnFailed != nil {
				e.OnFailed()
			}
			e.Log.Error("wager settlement failed, will retry next pass",
				zap.String("wagerId", w.ID),
				zap.String("gameId", gameID),
				zap.Error(err),
			)
		}
	}

	e.Log.Info("settlement pass completed",
		zap.String("gameId", gameID),
		zap.Int("pending", sum.Pending),
		zap.Int("settled", sum.Settled),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// settleOne decide e aplica o desfecho de uma única aposta.
func (e *Engine) settleOne(ctx context.Context, w *wager.Wager, g *catalog.Game, sum *Summary) error {
	var outcome Outcome
	if g.Unconfirmed {
		// Encerramento sem placar confiável: devolve o stake, nunca chuta vencedor.
		outcome = Pushed
	} else {
		var err error
		outcome, err = Evaluate(w, g)
		if err != nil {
			return err
		}
	}

	var (
		applied     bool
		err         error
		payoutCents int64
	)
	switch outcome {
	case Won:
		payoutCents = PayoutCents(w.StakeCents, w.OddsAtPlacement)
		applied, err = e.Ledger.SettleWin(ctx, w.ID, payoutCents)
	case Pushed:
		payoutCents = w.StakeCents
		applied, err = e.Ledger.SettlePush(ctx, w.ID)
	default:
		applied, err = e.Ledger.SettleLoss(ctx, w.ID)
	}
	if err != nil {
		return err
	}

	if !applied {
		// Outra execução (ou o cancelamento) venceu a corrida; nada a fazer.
		sum.Skipped++
		return nil
	}

	sum.Settled++
	switch outcome {
	case Won:
		sum.Won++
	case Pushed:
		sum.Pushed++
	default:
		sum.Lost++
	}
	if e.OnSettled != nil {
		e.OnSettled(outcome.String())
	}

	if e.Publ != nil {
		ev := events.WagerSettled{
			WagerID:     w.ID,
			UserID:      w.UserID,
			GameID:      w.GameID,
			BetType:     string(w.BetType),
			Selection:   w.Selection,
			Outcome:     outcome.String(),
			StakeCents:  w.StakeCents,
			PayoutCents: payoutCents,
			SettledAt:   e.now(),
		}
		if perr := e.Publ.PublishWagerSettled(ctx, ev); perr != nil {
			e.Log.Warn("wager_settled publish failed", zap.String("wagerId", w.ID), zap.Error(perr))
		}
	}
	return nil
}
