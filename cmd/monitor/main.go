package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MuradAles/Hermes/internal/cache"
	"github.com/MuradAles/Hermes/internal/config"
	"github.com/MuradAles/Hermes/internal/eval"
	"github.com/MuradAles/Hermes/internal/monitor"
	"github.com/MuradAles/Hermes/internal/notify"
	"github.com/MuradAles/Hermes/internal/path"
	"github.com/MuradAles/Hermes/internal/safety"
	"github.com/MuradAles/Hermes/internal/store"
	"github.com/MuradAles/Hermes/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	storeClient, natsClient, cacheClient, err := createClients(cfg)
	if err != nil {
		log.Printf("Failed to create clients: %v", err)
		os.Exit(1)
	}

	scheduler := buildScheduler(cfg, storeClient, natsClient, cacheClient)

	ctx, cancel := context.WithCancel(context.Background())
	go runLoop(ctx, scheduler, cfg)

	waitForShutdown(cancel, storeClient, natsClient, cacheClient)
}

// createClients creates all the required clients for the application
func createClients(cfg *config.Config) (*store.Client, *notify.Client, *cache.Client, error) {
	storeClient, err := store.New(cfg.DBConnStr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create store client: %w", err)
	}

	natsClient, err := notify.New(cfg.NATSURL)
	if err != nil {
		if closeErr := storeClient.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing storeClient: %v\n", closeErr)
		}
		return nil, nil, nil, fmt.Errorf("failed to create NATS client: %w", err)
	}

	cacheClient, err := cache.New(cfg.RedisAddr)
	if err != nil {
		natsClient.Close()
		if closeErr := storeClient.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing storeClient: %v\n", closeErr)
		}
		return nil, nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	return storeClient, natsClient, cacheClient, nil
}

// buildScheduler wires the weather provider, evaluator and alert gate into
// the monitoring scheduler.
func buildScheduler(cfg *config.Config, storeClient *store.Client, natsClient *notify.Client, cacheClient *cache.Client) *monitor.Scheduler {
	var provider weather.Provider = weather.NewOpenWeather(cfg.OpenWeatherKey)
	provider = cache.NewCachingProvider(cacheClient, provider)

	evaluator := eval.New(provider, path.NewBuilder(path.DefaultConfig()), safety.NewAssessor(safety.DefaultPenalties()))
	evaluator.SetLookupDelay(cfg.LookupDelay)

	gate := notify.NewGate(storeClient)

	scheduler := monitor.New(storeClient, evaluator, gate, natsClient)
	scheduler.SetBatchLimit(cfg.MonitorBatchSize)
	return scheduler
}

// runLoop runs one monitoring pass immediately, then one per interval.
func runLoop(ctx context.Context, scheduler *monitor.Scheduler, cfg *config.Config) {
	log.Printf("Starting weather monitor (interval %s, batch %d)", cfg.MonitorInterval, cfg.MonitorBatchSize)

	ticker := time.NewTicker(cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		if err := scheduler.Run(ctx); err != nil {
			log.Printf("Monitoring run failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// waitForShutdown waits for shutdown signals and handles cleanup
func waitForShutdown(cancel context.CancelFunc, storeClient *store.Client, natsClient *notify.Client, cacheClient *cache.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
	natsClient.Close()
	if err := storeClient.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing storeClient: %v\n", err)
	}
	if err := cacheClient.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing cacheClient: %v\n", err)
	}
}
