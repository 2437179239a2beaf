package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

// stateTTL is how long an idle session's saved cart lives in Redis.
const stateTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var storage cart.Storage = repos.NewStateRepo(db)
	if cfg.StateBackend == "redis" {
		rs, err := cache.NewRedisState(cfg.RedisAddr, stateTTL)
		if err != nil {
			log.Fatalf("redis state at %s: %v", cfg.RedisAddr, err)
		}
		defer rs.Close()
		storage = rs
		applog.Info(nil, "state.backend", map[string]any{"backend": "redis", "addr": cfg.RedisAddr})
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
		applog.Info(nil, "events.kafka", map[string]any{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic})
	}

	carts := cart.NewManager(cart.Options{
		Storage:   storage,
		Publisher: publisher,
		Topic:     cfg.KafkaTopic,
		Policy:    cart.Policy(cfg.LoginPolicy),
	})

	client := api.New(cfg.APIBaseURL, cfg.APITimeout)
	app := handlers.NewApp(handlers.NewDeps(cfg, client, db, carts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go carts.Run(ctx, time.Minute)
	go func() {
		<-ctx.Done()
		applog.Info(nil, "server.shutdown", nil)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.Error(nil, "server.shutdown.fail", err, nil)
		}
	}()

	applog.Info(nil, "server.listen", map[string]any{"port": cfg.Port, "marketplace": cfg.APIBaseURL})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen.fail", err, nil)
	}
	// Let in-flight cart mirrors reach the marketplace before exit.
	carts.Flush()
}
