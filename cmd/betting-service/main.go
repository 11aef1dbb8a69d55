package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/betting"
	httpapi "github.com/radieske/bet-market-engine/internal/betting-service/http"
	"github.com/radieske/bet-market-engine/internal/betting-service/producer"
	"github.com/radieske/bet-market-engine/internal/ledger"
	"github.com/radieske/bet-market-engine/internal/odds-service/cache"
	"github.com/radieske/bet-market-engine/internal/odds-service/ws"
	"github.com/radieske/bet-market-engine/internal/pricing"
	"github.com/radieske/bet-market-engine/internal/repo"
	"github.com/radieske/bet-market-engine/internal/settlement"
	sharedcache "github.com/radieske/bet-market-engine/internal/shared/cache"
	"github.com/radieske/bet-market-engine/internal/shared/config"
	sharedkafka "github.com/radieske/bet-market-engine/internal/shared/kafka"
	"github.com/radieske/bet-market-engine/internal/shared/logger"
	"github.com/radieske/bet-market-engine/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Banco (postgres ou sqlite conforme DB_DRIVER)
	st, err := repo.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer st.Close()

	// Redis: cache de odds + Pub/Sub do stream WebSocket
	rdb, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()
	oddsCache := cache.New(rdb, 60*time.Second, cfg.RedisPubSubChannel)

	// Kafka writers, um por tópico
	wBet := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	wSettled := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventSettled)
	wOdds := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsUpdated)
	defer wBet.Close()
	defer wSettled.Close()
	defer wOdds.Close()
	publ := producer.NewKafkaPublisher(wBet, wSettled, wOdds)

	met := metrics.NewMarket(prometheus.DefaultRegisterer, "betting")

	l := ledger.New()
	bets := betting.NewService(st, l, cfg.Market, log, publ)
	bets.OnPlaced = met.BetPlaced
	bets.OnRejected = met.BetRejected

	prices := pricing.NewEngine(st, cfg.Market, log, oddsCache, publ)
	prices.OnRecalculated = met.Recalculated
	prices.OnError = met.Error

	settler := settlement.NewEngine(st, l, log, publ)
	settler.OnSettled = met.Settled

	hub := ws.NewHub(log, func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	if len(cfg.AdminIDs) == 0 {
		log.Warn("ADMIN_IDS empty: admin routes will reject every caller")
	}
	api := &httpapi.API{
		Log:        log,
		Betting:    bets,
		Pricing:    prices,
		Settlement: settler,
		Cache:      oddsCache,
		WS:         http.HandlerFunc(hub.HandleWS),
		IsAdmin:    cfg.IsAdmin,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betting-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("betting-service stopped")
}
