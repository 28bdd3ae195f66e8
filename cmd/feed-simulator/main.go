package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/courtside/virtual-sportsbook/internal/shared/config"
	"github.com/courtside/virtual-sportsbook/internal/shared/logger"
	"github.com/courtside/virtual-sportsbook/internal/shared/metrics"
	"github.com/courtside/virtual-sportsbook/internal/simulator"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("feed-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Métricas Prometheus do WS de placar ao vivo
	wsConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulator_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
	prometheus.MustRegister(wsConnections, wsMessagesSent)

	slate := simulator.NewSlate(time.Now().UnixNano(), nil)
	hub := simulator.NewHub(log)
	hub.OnConnect = func() { wsConnections.Inc() }
	hub.OnDisconnect = func() { wsConnections.Dec() }
	hub.OnSent = func() { wsMessagesSent.Inc() }

	srv := simulator.NewServer(log, slate, hub)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Ticks de placar ao vivo a cada 3 segundos
	go srv.RunScoreTicker(ctx.Done(), 3*time.Second)

	publicSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: srv.Router()}
	go func() {
		log.Info("feed simulator listening",
			zap.String("addr", publicSrv.Addr),
			zap.String("paths", "/v4/sports/basketball_nba/odds,/v1/{date}/scoreboard.json,/ws"),
		)
		if err := publicSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = publicSrv.Shutdown(shutCtx)
	_ = metricsSrv.Shutdown(shutCtx)
	log.Info("feed simulator stopped")
}
