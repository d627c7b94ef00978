package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-freelance-orders/internal/changelog"
	"github.com/ariefcatur/go-freelance-orders/internal/config"
	kafkax "github.com/ariefcatur/go-freelance-orders/internal/kafka"
	"github.com/ariefcatur/go-freelance-orders/internal/logx"
	"github.com/ariefcatur/go-freelance-orders/internal/market"
	"github.com/ariefcatur/go-freelance-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	name := cfg.ServiceName + "-changelog"
	logx.Init(name, cfg.Env)

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
	}

	svc := &changelog.Service{
		Redis:       rdb,
		Log:         log.Logger,
		ServiceName: name,
	}
	cons := kafkax.NewConsumer(brokers, cfg.ChangelogGroup, market.TopicEntityChanged, cfg.ChangelogRetries)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().
			Str("group", cfg.ChangelogGroup).
			Str("topic", market.TopicEntityChanged).
			Int("workers", cfg.ChangelogRetries).
			Msg("changelog consumer started")
		if err := cons.Start(ctx, svc.HandleEntityChanged); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumer...")
	cancel()
	<-done
}
