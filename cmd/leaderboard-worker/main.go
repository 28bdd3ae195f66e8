package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/leaderboard"
	sharedcache "github.com/courtside/virtual-sportsbook/internal/shared/cache"
	"github.com/courtside/virtual-sportsbook/internal/shared/config"
	sharedkafka "github.com/courtside/virtual-sportsbook/internal/shared/kafka"
	"github.com/courtside/virtual-sportsbook/internal/shared/logger"
	"github.com/courtside/virtual-sportsbook/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("leaderboard-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group do ranking sobre o tópico de liquidações
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicWagerSettled, "leaderboard-worker")
	defer reader.Close()

	// Métricas Prometheus do processamento do ranking
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_messages_consumed_total", Help: "mensagens consumidas"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_updates_applied_total", Help: "atualizações aplicadas no ranking"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "leaderboard_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, applied, errorsBy)

	proc := &leaderboard.Processor{
		Log:    log,
		Reader: reader,
		Board:  leaderboard.NewRedisBoard(redisClient),

		OnConsumed: func() { consumed.Inc() },
		OnApplied:  func() { applied.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("leaderboard worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = metricsSrv.Shutdown(shutCtx)
	log.Info("leaderboard worker stopped")
}
