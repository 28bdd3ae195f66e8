package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/api"
	"github.com/courtside/virtual-sportsbook/internal/engine"
	enginecache "github.com/courtside/virtual-sportsbook/internal/engine/cache"
	"github.com/courtside/virtual-sportsbook/internal/engine/producer"
	"github.com/courtside/virtual-sportsbook/internal/engine/pubsub"
	"github.com/courtside/virtual-sportsbook/internal/feed"
	"github.com/courtside/virtual-sportsbook/internal/settlement"
	sharedcache "github.com/courtside/virtual-sportsbook/internal/shared/cache"
	"github.com/courtside/virtual-sportsbook/internal/shared/config"
	"github.com/courtside/virtual-sportsbook/internal/shared/db"
	sharedkafka "github.com/courtside/virtual-sportsbook/internal/shared/kafka"
	"github.com/courtside/virtual-sportsbook/internal/shared/logger"
	"github.com/courtside/virtual-sportsbook/internal/shared/metrics"
	"github.com/courtside/virtual-sportsbook/internal/store"
	"github.com/courtside/virtual-sportsbook/internal/wager"
	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

// settledFanout replica cada liquidação pro Kafka (leaderboard) e pro Redis
// Pub/Sub (superfícies de tempo real). Broadcast é best-effort.
type settledFanout struct {
	log   *zap.Logger
	kafka *producer.KafkaPublisher
	bcast *pubsub.RedisBroadcaster
}

func (f *settledFanout) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	if err := f.bcast.BroadcastWagerSettled(ctx, e); err != nil {
		f.log.Warn("settlement broadcast failed", zap.Error(err))
	}
	return f.kafka.PublishWagerSettled(ctx, e)
}

func main() {
	cfg := config.Load()
	log, err := logger.New("engine", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres, Redis e Kafka
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	gameFinishedW := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameFinished)
	wagerSettledW := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	manualReviewW := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicManualReview)
	defer gameFinishedW.Close()
	defer wagerSettledW.Close()
	defer manualReviewW.Close()

	kafkaPub := producer.NewKafkaPublisher(gameFinishedW, wagerSettledW, manualReviewW)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)

	repo := store.NewPostgres(pg)
	oddsCache := enginecache.NewRedisOddsCache(redisClient, 5*time.Minute)

	// Métricas Prometheus do ciclo de ingestão e da liquidação
	gamesCreated := prometheus.NewCounter(prometheus.CounterOpts{Name: "engine_games_created_total", Help: "jogos criados a partir dos feeds"})
	oddsApplied := prometheus.NewCounter(prometheus.CounterOpts{Name: "engine_odds_applied_total", Help: "atualizações de odds aplicadas"})
	gamesFinished := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "engine_games_finished_total", Help: "jogos encerrados"}, []string{"confirmed"})
	gamesPruned := prometheus.NewCounter(prometheus.CounterOpts{Name: "engine_games_pruned_total", Help: "jogos removidos por retenção"})
	wagersSettled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "engine_wagers_settled_total", Help: "apostas liquidadas por desfecho"}, []string{"outcome"})
	settleFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "engine_settlement_failures_total", Help: "falhas isoladas de liquidação"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "engine_errors_total", Help: "erros por estágio do ciclo"}, []string{"stage"})
	prometheus.MustRegister(gamesCreated, oddsApplied, gamesFinished, gamesPruned, wagersSettled, settleFailures, errorsBy)

	settler := &settlement.Engine{
		Log:    log,
		Games:  repo,
		Wagers: repo,
		Ledger: repo,
		Publ:   &settledFanout{log: log, kafka: kafkaPub, bcast: broadcaster},

		OnSettled: func(outcome string) { wagersSettled.WithLabelValues(outcome).Inc() },
		OnFailed:  func() { settleFailures.Inc() },
	}

	eng := &engine.Engine{
		Log:     log,
		Odds:    feed.NewOddsClient(cfg.OddsFeedURL, cfg.OddsAPIKey, cfg.FeedTimeout, cfg.FeedRetries, log),
		Results: feed.NewResultsClient(cfg.ResultsFeedURL, cfg.FeedTimeout, cfg.FeedRetries, log),
		Games:   repo,
		Settler: settler,
		Cache:   oddsCache,
		Publ:    kafkaPub,

		GraceWindow:      cfg.GraceWindow,
		RetentionHorizon: cfg.RetentionHorizon,

		OnGameCreated: func() { gamesCreated.Inc() },
		OnOddsApplied: func() { oddsApplied.Inc() },
		OnGameFinished: func(unconfirmed bool) {
			if unconfirmed {
				gamesFinished.WithLabelValues("false").Inc()
			} else {
				gamesFinished.WithLabelValues("true").Inc()
			}
		},
		OnPruned: func(n int) { gamesPruned.Add(float64(n)) },
		OnError:  func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	wagers := &wager.Service{Log: log, Games: repo, Store: repo}

	// Servidor HTTP de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Scheduler do ciclo de ingestão
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("scheduler init", zap.Error(err))
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.PollInterval),
		gocron.NewTask(func() {
			runCtx, runCancel := context.WithTimeout(ctx, cfg.PollInterval)
			defer runCancel()
			if err := eng.RunIngestionCycle(runCtx); err != nil && ctx.Err() == nil {
				log.Warn("ingestion cycle failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		log.Fatal("scheduler job", zap.Error(err))
	}
	sched.Start()

	// API pública do engine
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.NewServer(log, wagers, repo, repo, eng, settler).Router(),
	}
	go func() {
		log.Info("engine api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api server error", zap.Error(err))
		}
	}()

	log.Info("engine started",
		zap.Duration("pollInterval", cfg.PollInterval),
		zap.Duration("graceWindow", cfg.GraceWindow),
	)
	<-ctx.Done()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	_ = sched.Shutdown()
	_ = apiSrv.Shutdown(shutCtx)
	_ = metricsSrv.Shutdown(shutCtx)
	log.Info("engine stopped")
}
