package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Law2x/yeloSpot/config"
	"github.com/Law2x/yeloSpot/engine"
	"github.com/Law2x/yeloSpot/lalamove"
	"github.com/Law2x/yeloSpot/messaging"
	"github.com/Law2x/yeloSpot/metrics"
	"github.com/Law2x/yeloSpot/store"
	"github.com/Law2x/yeloSpot/www"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "yelospot.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("yelospot", version)
		return
	}
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyEnv()
	if *port > 0 {
		cfg.Web.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Open order snapshot
	snap, err := store.Open(&cfg.Snapshot)
	if err != nil {
		log.Fatalf("open snapshot: %v", err)
	}
	orders := store.New(context.Background(), snap, store.WithLogFunc(log.Printf))
	defer orders.Close()

	var backend engine.Backend
	if cfg.MockMode {
		backend = lalamove.NewOffline()
		log.Printf("mock mode: provider calls are simulated")
	} else {
		backend = lalamove.NewClient(cfg.Provider.Host, lalamove.Credentials{
			Key:    cfg.Provider.APIKey,
			Secret: cfg.Provider.APISecret,
			Market: cfg.Provider.Market,
		}, cfg.Provider.Timeout)
	}

	m := metrics.New()

	// Optional event mirror onto the message bus
	var mirror engine.Publisher
	if cfg.Messaging.Backend != "" && cfg.Messaging.Backend != "none" {
		msgClient := messaging.NewClient(&cfg.Messaging)
		defer msgClient.Close()
		if err := msgClient.Connect(); err != nil {
			log.Printf("messaging connect: %v (events will not be mirrored)", err)
		} else {
			outbox := messaging.NewOutbox(msgClient, 0, 0)
			outbox.Start()
			defer outbox.Stop()
			mirror = outbox
			log.Printf("mirroring events to %s topic %s", msgClient.Backend(), cfg.Messaging.EventsTopic)
		}
	}

	// Create and start engine
	eng := engine.New(engine.Config{
		AppConfig: cfg,
		Store:     orders,
		Backend:   backend,
		Mirror:    mirror,
		Metrics:   m,
		LogFunc:   log.Printf,
	})
	eng.Start()
	defer eng.Stop()

	// Cancelling baseCtx ends every open event stream.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	addr := cfg.ListenAddr()
	server := &http.Server{
		Addr:              addr,
		Handler:           www.NewRouter(eng),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		log.Printf("Yelo Spot listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	stopStreams()

	// Graceful HTTP shutdown with 10s deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}
}
