// Command pipeline-worker runs one dispatched pipeline request per
// invocation. Cloud Workflows calls it with the worker request as body.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/researchpipeline/internal/app"
	"github.com/Lllllllleong/researchpipeline/internal/config"
	"github.com/Lllllllleong/researchpipeline/internal/logging"
	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// worker is the part of *app.App the function uses.
type worker interface {
	Work(ctx context.Context, req models.WorkerRequest) (models.WorkerResponse, error)
}

var (
	instance worker
	once     sync.Once
	initErr  error
)

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	functions.HTTP("RunPipeline", runPipeline)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		slog.Error("Function framework stopped.", "error", err)
		os.Exit(1)
	}
}

func runPipeline(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		instance, initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	handle(instance, w, r)
}

func handle(wk worker, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode worker request", "error", err)
		http.Error(w, "invalid worker request", http.StatusBadRequest)
		return
	}

	logCtx := slog.With("run_id", req.RunID, "project", req.Parameters.ProjectName)
	resp, err := wk.Work(r.Context(), req)
	status := http.StatusOK
	if err != nil {
		logCtx.Error("Pipeline run failed.", "error", err)
		status = http.StatusInternalServerError
	} else {
		logCtx.Info("Pipeline run finished.", "documents", len(resp.Documents))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func setup(ctx context.Context) (worker, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return app.New(ctx, cfg, logger)
}
