// Command pipeline-api serves the trigger/status API as an HTTP Cloud
// Function.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/researchpipeline/internal/app"
	"github.com/Lllllllleong/researchpipeline/internal/config"
	"github.com/Lllllllleong/researchpipeline/internal/logging"
)

var (
	routes  http.Handler
	once    sync.Once
	initErr error
)

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	functions.HTTP("PipelineAPI", serveAPI)
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

func serveAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		var a *app.App
		a, initErr = setup(context.Background())
		if initErr == nil {
			routes = a.API.Routes()
		}
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	routes.ServeHTTP(w, r)
}

func setup(ctx context.Context) (*app.App, error) {
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
