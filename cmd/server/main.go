package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rinevard/BIT-Annual-Eat/internal/config"
	internalhttp "github.com/rinevard/BIT-Annual-Eat/internal/http"
	"github.com/rinevard/BIT-Annual-Eat/internal/kv"
	"github.com/rinevard/BIT-Annual-Eat/internal/report"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store kv.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		store = kv.NewRedisStore(redisClient)
	} else {
		log.Printf("REDIS_ADDR not set, using in-memory store (reports do not survive restarts)")
		store = kv.NewMemoryStore()
	}

	if cfg.ReportSalt == "" {
		log.Printf("REPORT_SALT not set, every upload gets a random report id")
	}

	reports := report.NewStore(store, cfg.ReportSalt, cfg.ReportTTL)
	server := internalhttp.NewServer(cfg, reports)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("report server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
