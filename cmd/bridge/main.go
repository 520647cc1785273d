package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"witbridge/bridgeapi"
	"witbridge/chain"
	"witbridge/config"
	"witbridge/node"
	"witbridge/poller"
	"witbridge/reporter"
	"witbridge/storage/store"
)

const bridgeConfigPath = "./config/bridge.defaults.yml"

// logReporter is a placeholder reporter that records batches in the process
// log. The production reporter submits tallies to the destination chain and
// lives outside this service.
type logReporter struct {
	logger *log.Logger
}

func (r *logReporter) ReportTallies(ctx context.Context, reports []reporter.Report) error {
	for _, rep := range reports {
		r.logger.Printf("[%d] tally resolved at %d for dr_tx_hash %s (%d result bytes)",
			rep.DrID, rep.Timestamp, rep.DrTxHash, len(rep.Result))
	}
	return nil
}

func main() {
	logger := log.New(os.Stdout, "[BRIDGE] ", log.LstdFlags|log.Lshortfile)
	logger.Println("Starting Bridge Service...")

	// 1. Load Bridge Config
	bridgeCfg, err := config.LoadBridgeConfig(bridgeConfigPath)
	if err != nil {
		logger.Fatalf("FATAL: Failed to load bridge configuration: %v", err)
	}
	bridgeCfg.LogConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Database Connection
	logger.Println("Initializing database connection...")
	dbStore, err := store.NewPostgresStore(
		ctx,
		bridgeCfg.Database.DSN,
		bridgeCfg.Database.MaxConnections,
		bridgeCfg.Database.MinConnections,
		logger,
	)
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize database store: %v", err)
	}
	defer dbStore.Close()

	// 3. Initialize Oracle Node Client
	logger.Println("Initializing oracle node client...")
	nodeClient := node.NewTCPClient(
		bridgeCfg.Witnet.Addr,
		time.Duration(bridgeCfg.Witnet.CallTimeoutMs)*time.Millisecond,
		logger,
	)

	// 4. Start Poller
	logger.Println("Starting reconciliation poller...")
	p := poller.New(
		poller.Config{
			TallyPollingRate:  time.Duration(bridgeCfg.Witnet.TallyPollingRateMs) * time.Millisecond,
			UnresolvedTimeout: time.Duration(bridgeCfg.Witnet.DrTxUnresolvedTimeoutMs) * time.Millisecond,
			EpochConstants: chain.EpochConstants{
				CheckpointZeroTimestamp: bridgeCfg.Witnet.CheckpointZeroTimestamp,
				CheckpointsPeriod:       bridgeCfg.Witnet.CheckpointsPeriod,
			},
		},
		dbStore,
		nodeClient,
		&logReporter{logger: logger},
		logger,
	)

	pollerDone := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(pollerDone)
	}()

	// 5. Setup HTTP Status Server
	logger.Println("Setting up HTTP status server...")
	mux := http.NewServeMux()

	handler := bridgeapi.NewHandler(dbStore, logger)
	handler.RegisterRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	readTimeout, err := time.ParseDuration(bridgeCfg.Server.ReadTimeout)
	if err != nil {
		logger.Fatalf("FATAL: Invalid read_timeout: %v", err)
	}
	writeTimeout, err := time.ParseDuration(bridgeCfg.Server.WriteTimeout)
	if err != nil {
		logger.Fatalf("FATAL: Invalid write_timeout: %v", err)
	}
	idleTimeout, err := time.ParseDuration(bridgeCfg.Server.IdleTimeout)
	if err != nil {
		logger.Fatalf("FATAL: Invalid idle_timeout: %v", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", bridgeCfg.Server.HTTPPort),
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		logger.Printf("Bridge status server listening on port %d", bridgeCfg.Server.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	logger.Println("Bridge Service started successfully. Press Ctrl+C to stop.")

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Received shutdown signal, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARNING: HTTP server shutdown error: %v", err)
	}

	// Stop the poller between passes and wait for it to wind down.
	cancel()
	<-pollerDone

	logger.Println("Bridge Service shut down gracefully.")
}
