package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/betting-service/producer"
	"github.com/radieske/bet-market-engine/internal/odds-recalc/consumer"
	"github.com/radieske/bet-market-engine/internal/odds-recalc/scheduler"
	"github.com/radieske/bet-market-engine/internal/odds-service/cache"
	"github.com/radieske/bet-market-engine/internal/pricing"
	"github.com/radieske/bet-market-engine/internal/repo"
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := repo.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer st.Close()

	rdb, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()
	oddsCache := cache.New(rdb, 60*time.Second, cfg.RedisPubSubChannel)

	// Só publica odds; apostas e liquidações saem do betting-service
	wOdds := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsUpdated)
	defer wOdds.Close()
	publ := producer.NewKafkaPublisher(nil, nil, wOdds)

	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetPlaced, "odds-recalc")
	defer reader.Close()

	met := metrics.NewMarket(prometheus.DefaultRegisterer, "odds_recalc")

	engine := pricing.NewEngine(st, cfg.Market, log, oddsCache, publ)
	engine.OnRecalculated = met.Recalculated
	engine.OnError = met.Error

	sched := &scheduler.Scheduler{
		Log:      log,
		Engine:   engine,
		Interval: cfg.Market.RecalcInterval,
		OnBatch:  met.Batch,
		OnError:  met.Error,
	}
	proc := &consumer.Processor{
		Log:            log,
		Reader:         reader,
		Engine:         engine,
		OnConsumed:     met.Consumed,
		OnRecalculated: met.Triggered,
		OnError:        met.Error,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		return rdb.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	log.Info("odds-recalc-worker started", zap.Duration("interval", cfg.Market.RecalcInterval))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler stopped with error", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped with error", zap.Error(err))
		}
	}()
	wg.Wait()
	log.Info("odds-recalc-worker stopped")
}
