// Command agent runs a long-lived buffering agent: records posted to its
// local HTTP API are delivered upstream when the endpoint is reachable
// and buffered in badger when it is not.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/stores"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (optional, env vars apply on top)")
		dataDir    = flag.String("data", "offsync-data", "badger data directory")
		listenAddr = flag.String("listen", ":8080", "local ingest address")
	)
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	opts, err := offsync.LoadOptions(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	opts.Logger = offsync.NewZerologLogger(logger)

	store, err := stores.OpenBadgerStore(*dataDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	monitor := offsync.NewProbeMonitor(opts.SyncURL, 15*time.Second)

	engine, err := offsync.NewEngine(context.Background(), store, nil, monitor, opts)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("probe monitor stopped")
		}
	}()
	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("engine stopped")
		}
	}()

	srv := &http.Server{
		Addr:    *listenAddr,
		Handler: ingestHandler(engine, logger),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", *listenAddr).Str("upstream", opts.SyncURL).Msg("agent started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("ingest server: %v", err)
	}
}

// ingestHandler accepts POST /records?namespace=...&priority=N with a
// JSON body and hands it to the engine.
func ingestHandler(engine *offsync.Engine, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /records", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var payload json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "body must be JSON", http.StatusBadRequest)
			return
		}

		rec := offsync.Record{Payload: payload}
		if p := r.URL.Query().Get("priority"); p != "" {
			priority, err := strconv.Atoi(p)
			if err != nil {
				http.Error(w, "priority must be an integer", http.StatusBadRequest)
				return
			}
			rec = rec.WithPriority(priority)
		}

		res, err := engine.Store(r.Context(), r.URL.Query().Get("namespace"), rec)
		if err != nil {
			if errors.Is(err, offsync.ErrUnknownNamespace) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Msg("store record")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if res.Delivered {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "delivered"})
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "buffered", "id": res.ID})
	})
	return mux
}
