package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/wager"
	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

// Processor consome eventos wager_settled do Kafka e mantém o ranking de lucro
// por usuário num ZSET do Redis. Callbacks de métricas podem ser usadas para
// monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Board  *RedisBoard

	OnConsumed func()       // métricas (counter++)
	OnApplied  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e atualização do ranking
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.WagerSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		delta := profitDelta(ev)
		if delta == 0 {
			continue // push não altera o ranking
		}

		if err := p.Board.IncrProfit(ctx, ev.UserID, delta); err != nil {
			p.Log.Warn("redis zincrby failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("board")
			}
			continue
		}
		if p.OnApplied != nil {
			p.OnApplied()
		}
	}
}

// profitDelta converte o desfecho da aposta em variação de lucro líquido
func profitDelta(ev events.WagerSettled) int64 {
	switch wager.Status(ev.Outcome) {
	case wager.StatusWon:
		return ev.PayoutCents - ev.StakeCents
	case wager.StatusLost:
		return -ev.StakeCents
	}
	return 0
}
