package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/incidentiq/datagen/internal/api"
	"github.com/incidentiq/datagen/internal/app"
	"github.com/incidentiq/datagen/internal/config"
	"github.com/incidentiq/datagen/internal/infra/objectstore"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
	"github.com/incidentiq/datagen/internal/logging"
)

func main() {
	cfg := config.Load()

	requestsDir := flag.String("requests-dir", cfg.RequestsDir, "Requests directory")
	targetsDir := flag.String("targets-dir", cfg.TargetsDir, "Targets directory")
	runsDB := flag.String("runs-db", cfg.RunsDBPath, "Runs database path")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Directory that run outputs are written under")
	bindAddr := flag.String("bind", cfg.BindAddr, "Bind address")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	batchSize := flag.Int("batch-size", cfg.BatchSize, "Default insert batch size")
	flag.Parse()

	logger := logging.NewLogger(*logLevel).WithComponent("api_main")
	defer logger.Sync()

	requestRepo := requests.NewFileRepository(*requestsDir)
	targetRepo := targets.NewFileRepository(*targetsDir)

	runRepo := runs.NewSQLiteRepository(*runsDB)
	if err := runRepo.Init(); err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_run_repo"})
		os.Exit(1)
	}
	defer runRepo.Close()

	var publisher *objectstore.Publisher
	if cfg.S3.Enabled() {
		p, err := objectstore.NewPublisher(cfg.S3)
		if err != nil {
			logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_object_store"})
			os.Exit(1)
		}
		publisher = p
	}

	runService := app.NewRunService(requestRepo, targetRepo, runRepo, logger, app.Options{
		DefaultSeed: cfg.Seed,
		BatchSize:   *batchSize,
		Publisher:   publisher,
		OutputDir:   *outputDir,
	})

	mux := http.NewServeMux()
	api.NewHandler(requestRepo, targetRepo, runService).Register(mux)

	logger.Infow("startup.listening", map[string]any{"bind": *bindAddr, "publish": publisher != nil, "output_dir": *outputDir})
	if err := http.ListenAndServe(*bindAddr, loggingMiddleware(logger.WithComponent("http"), mux)); err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "listen"})
		os.Exit(1)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"bytes":       sw.bytes,
			"duration_ms": time.Since(started).Milliseconds(),
			"remote":      r.RemoteAddr,
		}
		if sw.status >= 500 {
			logger.Errorw("request.completed", fields)
			return
		}
		if sw.status >= 400 {
			logger.Warnw("request.completed", fields)
			return
		}
		logger.Infow("request.completed", fields)
	})
}
