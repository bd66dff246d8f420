// Command pipeline-trigger starts a run when a run.json manifest is written
// to a bucket. The run uses the manifest's directory as its documents base.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/researchpipeline/internal/app"
	"github.com/Lllllllleong/researchpipeline/internal/config"
	"github.com/Lllllllleong/researchpipeline/internal/logging"
)

var (
	instance *app.App
	once     sync.Once
	initErr  error
)

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	functions.CloudEvent("StartFromManifest", startFromManifest)
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

func startFromManifest(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		instance, initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var obj objectEvent
	if err := json.Unmarshal(e.Data(), &obj); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	if path.Base(obj.Name) != ManifestName {
		slog.Debug("Ignoring object.", "bucket", obj.Bucket, "name", obj.Name)
		return nil
	}

	t := &trigger{opener: instance.Opener, submitter: instance.API}
	return t.start(ctx, obj)
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
