package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelcanva-indexer/internal/admission"
	"pixelcanva-indexer/internal/api"
	"pixelcanva-indexer/internal/config"
	"pixelcanva-indexer/internal/eventbus"
	"pixelcanva-indexer/internal/homeserver"
	"pixelcanva-indexer/internal/ingester"
	"pixelcanva-indexer/internal/ratelimit"
	"pixelcanva-indexer/internal/repository"
	"pixelcanva-indexer/internal/resize"
)

func nowMicros() int64 {
	return time.Now().UnixMicro()
}

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}
	log.Printf("Loaded config from %s", configPath)

	ctx, cancel := context.WithCancel(context.Background())

	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	if err := repo.EnsureInitialSize(ctx, cfg.Canvas.InitialWidth, cfg.Canvas.InitialHeight, 0); err != nil {
		log.Fatalf("Failed to seed initial canvas size: %v", err)
	}
	log.Println("Database ready")

	bus := eventbus.New()
	defer bus.Close()

	hsClient := homeserver.NewClient(30 * time.Second)
	discoverer := homeserver.NewHTTPDiscoverer(cfg.Discovery.ResolverURL, &http.Client{Timeout: 10 * time.Second})
	throttle := ratelimit.NewFromEnv()

	admit := admission.NewService(repo, discoverer, nowMicros)
	regenWindowMicros := int64(cfg.Canvas.CreditRegenSeconds) * 1_000_000

	pipeline := ingester.NewPipeline(repo, hsClient, bus, cfg.Canvas.MaxCredits, regenWindowMicros)
	resizeCtl := resize.NewController(repo, bus, nowMicros)
	scheduler := ingester.NewScheduler(repo, hsClient, pipeline, resizeCtl, throttle,
		time.Duration(cfg.Watcher.PollIntervalMS)*time.Millisecond, nowMicros)

	hub := api.NewHub(bus)
	handler := api.NewServer(admit, repo, hub, cfg.Canvas.MaxCredits, regenWindowMicros, cfg.Canvas.CreditRegenSeconds, nowMicros)

	httpServer := &http.Server{Addr: cfg.Server.Listen, Handler: handler}

	go scheduler.Run(ctx)
	log.Printf("Polling scheduler started, interval %dms", cfg.Watcher.PollIntervalMS)

	go func() {
		log.Printf("API server listening on %s", cfg.Server.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
	cancel()

	log.Println("Shutdown complete")
}
