package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/catalog"
	"github.com/courtside/virtual-sportsbook/internal/feed"
	"github.com/courtside/virtual-sportsbook/internal/settlement"
	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

// OddsFeed é o cliente do provider de odds.
type OddsFeed interface {
	Fetch(ctx context.Context) ([]feed.OddsRecord, error)
}

// ResultsFeed é o cliente do provider de resultados, consultado por data.
type ResultsFeed interface {
	Fetch(ctx context.Context, date time.Time) ([]feed.ResultRecord, error)
}

// GameStore é o contrato de persistência do catálogo usado pelo ciclo.
type GameStore interface {
	UpsertByExternalID(ctx context.Context, g *catalog.Game) error
	FindByExternalID(ctx context.Context, externalID string) (*catalog.Game, error)
	FindActive(ctx context.Context) ([]*catalog.Game, error)
	FindFinishedWithPendingWagers(ctx context.Context) ([]string, error)
	PruneFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Settler dispara a liquidação de um jogo encerrado.
type Settler interface {
	SettleGame(ctx context.Context, gameID string) (settlement.Summary, error)
}

// OddsCache é o write-through de odds correntes (Redis); opcional.
type OddsCache interface {
	SetCurrent(ctx context.Context, g *catalog.Game) error
}

// Publisher emite eventos de ciclo de vida de jogos; opcional.
type Publisher interface {
	PublishGameFinished(ctx context.Context, e events.GameFinished) error
	PublishManualReview(ctx context.Context, e events.ManualReviewFlagged) error
}

// Engine orquestra o ciclo de ingestão: feeds → matcher → sincronização de
// odds → monitor de ciclo de vida → liquidação → pruning. As duas entradas
// públicas (RunIngestionCycle e SettleGame via Settler) são idempotentes e
// chamadas de forma idêntica pelo scheduler, pela API admin e pelo opsctl.
type Engine struct {
	Log     *zap.Logger
	Odds    OddsFeed
	Results ResultsFeed
	Games   GameStore
	Settler Settler
	Cache   OddsCache // opcional
	Publ    Publisher // opcional

	GraceWindow      time.Duration
	RetentionHorizon time.Duration

	// Callbacks de métricas, ligados no main
	OnGameCreated  func()
	OnOddsApplied  func()
	OnGameFinished func(unconfirmed bool)
	OnPruned       func(n int)
	OnError        func(stage string)

	Now func() time.Time // opcional; default time.Now
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Engine) stageError(stage string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("stage", stage), zap.Error(err))
	e.Log.Warn("ingestion stage error", fields...)
	if e.OnError != nil {
		e.OnError(stage)
	}
}

// RunIngestionCycle executa uma rodada completa de ingestão. Cada passo tolera
// falha dos demais: feed fora do ar ou registro ambíguo é pulado e retomado no
// próximo ciclo; estado parcialmente atualizado é aceitável e retomável.
// Nenhum lock é mantido através de chamada de rede: os feeds são lidos antes,
// as mutações acontecem depois.
func (e *Engine) RunIngestionCycle(ctx context.Context) error {
	started := e.now()

	active, err := e.Games.FindActive(ctx)
	if err != nil {
		return err
	}

	active = e.oddsPass(ctx, active)
	e.resultsPass(ctx, active)
	e.gracePass(ctx)
	e.settlementRetryPass(ctx)
	e.prunePass(ctx)

	e.Log.Info("ingestion cycle completed",
		zap.Duration("took", e.now().Sub(started)),
		zap.Int("activeGames", len(active)),
	)
	return ctx.Err()
}

// oddsPass reconcilia o feed de odds com o catálogo. Retorna o working set
// possivelmente acrescido de jogos recém-criados.
func (e *Engine) oddsPass(ctx context.Context, active []*catalog.Game) []*catalog.Game {
	records, err := e.Odds.Fetch(ctx)
	if err != nil {
		// falha transitória: pula a atualização de odds deste ciclo
		e.stageError("odds_fetch", err)
		return active
	}

	now := e.now()
	for _, rec := range records {
		res := catalog.Match(catalog.ExternalRecord{
			ExternalID: rec.ExternalID,
			HomeTeam:   rec.HomeTeam,
			AwayTeam:   rec.AwayTeam,
			StartTime:  rec.CommenceTime,
		}, active)

		switch res.Kind {
		case catalog.MatchExactID, catalog.MatchSameDayName:
			if !catalog.ApplyOdds(res.Game, rec, now) {
				continue
			}
			if err := e.Games.UpsertByExternalID(ctx, res.Game); err != nil {
				e.stageError("odds_upsert", err, zap.String("gameId", res.Game.ExternalID))
				continue
			}
			e.cacheCurrent(ctx, res.Game)
			if e.OnOddsApplied != nil {
				e.OnOddsApplied()
			}

		case catalog.MatchAmbiguous:
			// mais de um candidato no mesmo dia: não chutar, registrar pro operador
			e.stageError("match_ambiguous", nil,
				zap.String("home", rec.HomeTeam), zap.String("away", rec.AwayTeam))

		case catalog.MatchNone:
			g := &catalog.Game{
				ExternalID: rec.ExternalID,
				HomeTeam:   rec.HomeTeam,
				AwayTeam:   rec.AwayTeam,
				StartTime:  rec.CommenceTime,
				Status:     catalog.StatusScheduled,
			}
			catalog.ApplyOdds(g, rec, now)
			if err := e.Games.UpsertByExternalID(ctx, g); err != nil {
				e.stageError("game_create", err, zap.String("gameId", g.ExternalID))
				continue
			}
			active = append(active, g)
			e.cacheCurrent(ctx, g)
			if e.OnGameCreated != nil {
				e.OnGameCreated()
			}
			e.Log.Info("game created from odds feed",
				zap.String("gameId", g.ExternalID),
				zap.String("home", g.HomeTeam),
				zap.String("away", g.AwayTeam),
			)
		}
	}
	return active
}

// resultsPass consulta o feed de resultados de hoje e de ontem (jogos que viram
// a madrugada) e avança o ciclo de vida dos jogos casados.
func (e *Engine) resultsPass(ctx context.Context, active []*catalog.Game) {
	now := e.now()
	for _, date := range []time.Time{now, now.AddDate(0, 0, -1)} {
		records, err := e.Results.Fetch(ctx, date)
		if err != nil {
			e.stageError("results_fetch", err, zap.String("date", date.Format("20060102")))
			continue
		}

		for _, rec := range records {
			res := catalog.Match(catalog.ExternalRecord{
				ExternalID: rec.ExternalID,
				HomeTeam:   rec.HomeTeam,
				AwayTeam:   rec.AwayTeam,
				StartTime:  date,
			}, active)

			switch res.Kind {
			case catalog.MatchExactID, catalog.MatchSameDayName:
				e.applyResult(ctx, res.Game, rec, now)

			case catalog.MatchAmbiguous:
				e.stageError("match_ambiguous", nil,
					zap.String("home", rec.HomeTeam), zap.String("away", rec.AwayTeam))

			case catalog.MatchNone:
				// Primeiro avistamento pelo feed de resultados: cria o jogo
				// enquanto ainda há o que acompanhar. Registro já terminal sem
				// jogo interno não tem aposta a liquidar; ignorado.
				if rec.StatusCode == feed.StatusCodeFinal {
					continue
				}
				g := &catalog.Game{
					ExternalID: rec.ExternalID,
					HomeTeam:   rec.HomeTeam,
					AwayTeam:   rec.AwayTeam,
					StartTime:  date.UTC().Truncate(24 * time.Hour),
					Status:     catalog.StatusScheduled,
				}
				catalog.AdvanceFromResult(g, rec, now)
				if err := e.Games.UpsertByExternalID(ctx, g); err != nil {
					e.stageError("game_create", err, zap.String("gameId", g.ExternalID))
					continue
				}
				active = append(active, g)
				if e.OnGameCreated != nil {
					e.OnGameCreated()
				}
			}
		}
	}
}

// applyResult grava a transição derivada do placar e, na entrada em finished,
// dispara a liquidação do jogo.
func (e *Engine) applyResult(ctx context.Context, g *catalog.Game, rec feed.ResultRecord, now time.Time) {
	finishedNow, changed := catalog.AdvanceFromResult(g, rec, now)
	if !changed {
		return
	}
	if err := e.Games.UpsertByExternalID(ctx, g); err != nil {
		e.stageError("result_upsert", err, zap.String("gameId", g.ExternalID))
		return
	}
	if !finishedNow {
		return
	}

	e.Log.Info("game finished",
		zap.String("gameId", g.ExternalID),
		zap.String("home", g.HomeTeam), zap.Int("homeScore", g.HomeScore),
		zap.String("away", g.AwayTeam), zap.Int("awayScore", g.AwayScore),
	)
	if e.OnGameFinished != nil {
		e.OnGameFinished(false)
	}
	if e.Publ != nil {
		ev := events.GameFinished{
			GameID:     g.ExternalID,
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			HomeScore:  g.HomeScore,
			AwayScore:  g.AwayScore,
			FinishedAt: now,
		}
		if err := e.Publ.PublishGameFinished(ctx, ev); err != nil {
			e.Log.Warn("game_finished publish failed", zap.String("gameId", g.ExternalID), zap.Error(err))
		}
	}

	if _, err := e.Settler.SettleGame(ctx, g.ExternalID); err != nil {
		// apostas que falharem seguem pendentes; a próxima passada retoma
		e.stageError("settlement", err, zap.String("gameId", g.ExternalID))
	}
}

// gracePass força o encerramento de jogos sem update do feed além da janela de
// tolerância. Sem placar confiável toda aposta vira push e o jogo é marcado
// pra revisão manual.
func (e *Engine) gracePass(ctx context.Context) {
	now := e.now()

	stale, err := e.Games.FindActive(ctx)
	if err != nil {
		e.stageError("grace_scan", err)
		return
	}

	for _, g := range stale {
		if !catalog.ShouldForceFinish(g, now, e.GraceWindow) {
			continue
		}
		if !catalog.ForceFinish(g, now) {
			continue
		}
		if err := e.Games.UpsertByExternalID(ctx, g); err != nil {
			e.stageError("grace_upsert", err, zap.String("gameId", g.ExternalID))
			continue
		}

		e.Log.Warn("game force-finished without confirmed score",
			zap.String("gameId", g.ExternalID),
			zap.Time("startTime", g.StartTime),
		)
		if e.OnGameFinished != nil {
			e.OnGameFinished(true)
		}

		if e.Publ != nil {
			ev := events.GameFinished{
				GameID:      g.ExternalID,
				HomeTeam:    g.HomeTeam,
				AwayTeam:    g.AwayTeam,
				Unconfirmed: true,
				FinishedAt:  now,
			}
			if err := e.Publ.PublishGameFinished(ctx, ev); err != nil {
				e.Log.Warn("game_finished publish failed", zap.String("gameId", g.ExternalID), zap.Error(err))
			}
		}

		sum, err := e.Settler.SettleGame(ctx, g.ExternalID)
		if err != nil {
			e.stageError("settlement", err, zap.String("gameId", g.ExternalID))
		}

		if e.Publ != nil {
			ev := events.ManualReviewFlagged{
				GameID:     g.ExternalID,
				HomeTeam:   g.HomeTeam,
				AwayTeam:   g.AwayTeam,
				StartTime:  g.StartTime,
				Reason:     "grace_window_expired",
				FlaggedAt:  now,
				WagersPush: sum.Pushed,
			}
			if err := e.Publ.PublishManualReview(ctx, ev); err != nil {
				e.Log.Warn("manual_review publish failed", zap.String("gameId", g.ExternalID), zap.Error(err))
			}
		}
	}
}

// settlementRetryPass retoma a liquidação de jogos já encerrados que ainda têm
// aposta pendente: uma falha isolada (banco indisponível, deadlock) deixa a
// aposta pendente, e esta varredura a retoma a cada ciclo até zerar. Como
// SettleGame é idempotente e só toca apostas pendentes, reprocessar um jogo já
// parcialmente liquidado é seguro.
func (e *Engine) settlementRetryPass(ctx context.Context) {
	gameIDs, err := e.Games.FindFinishedWithPendingWagers(ctx)
	if err != nil {
		e.stageError("settlement_retry_scan", err)
		return
	}

	for _, id := range gameIDs {
		sum, err := e.Settler.SettleGame(ctx, id)
		if err != nil {
			e.stageError("settlement", err, zap.String("gameId", id))
			continue
		}
		e.Log.Info("settlement retried for finished game",
			zap.String("gameId", id),
			zap.Int("won", sum.Won),
			zap.Int("lost", sum.Lost),
			zap.Int("pushed", sum.Pushed),
			zap.Int("failed", sum.Failed),
		)
	}
}

// prunePass remove do working set jogos finalizados além do horizonte de
// retenção, mantendo o engine com memória limitada em execução contínua.
func (e *Engine) prunePass(ctx context.Context) {
	cutoff := e.now().Add(-e.RetentionHorizon)
	n, err := e.Games.PruneFinishedBefore(ctx, cutoff)
	if err != nil {
		e.stageError("prune", err)
		return
	}
	if n > 0 {
		e.Log.Info("pruned finished games", zap.Int("count", n), zap.Time("cutoff", cutoff))
		if e.OnPruned != nil {
			e.OnPruned(n)
		}
	}
}

func (e *Engine) cacheCurrent(ctx context.Context, g *catalog.Game) {
	if e.Cache == nil {
		return
	}
	if err := e.Cache.SetCurrent(ctx, g); err != nil {
		// cache é best-effort; a fonte da verdade é o store
		e.Log.Warn("odds cache set failed", zap.String("gameId", g.ExternalID), zap.Error(err))
	}
}
