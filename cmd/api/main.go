package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-freelance-orders/internal/config"
	"github.com/ariefcatur/go-freelance-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-freelance-orders/internal/kafka"
	"github.com/ariefcatur/go-freelance-orders/internal/logx"
	"github.com/ariefcatur/go-freelance-orders/internal/market"
	"github.com/ariefcatur/go-freelance-orders/internal/postgres"
	"github.com/ariefcatur/go-freelance-orders/internal/redisx"
	"github.com/ariefcatur/go-freelance-orders/internal/seed"
	"github.com/ariefcatur/go-freelance-orders/internal/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logx.Init(cfg.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	db, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db connect")
	}
	defer closeDB()

	repo := market.NewRepo(db, cfg.DBDriver, cfg.StrictReferences)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	st, err := seed.Run(ctx, repo, cfg.SeedMode, cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Str("mode", cfg.SeedMode).
		Bool("skipped", st.Skipped).
		Int("users", st.Users).
		Int("orders", st.Orders).
		Int("offers", st.Offers).
		Msg("seed done")

	// Redis item cache (optional)
	var cache *redisx.ItemCache
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		cache = redisx.NewItemCache(rdb, redisx.TTLItemCache)
	}

	// Kafka change events (optional)
	var (
		events httpx.Publisher
		prod   *kafkax.Producer
	)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		prod = kafkax.NewProducer(brokers, market.TopicEntityChanged, 1024)
		prod.Start(ctx)
		events = prod
	}

	router := httpx.NewRouter()
	httpx.NewHandler(repo, cache, events, cfg.ServiceName).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush queued events
		prod.WaitClosed()
	}
}

// openStore returns the database for cfg.DBDriver and a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, func(), error) {
	if cfg.DBDriver == config.DriverPostgres {
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		db := postgres.OpenDB(pool)
		return db, func() {
			_ = db.Close()
			pool.Close()
		}, nil
	}

	db, err := sqlite.Open(ctx, cfg.StrictReferences)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}
