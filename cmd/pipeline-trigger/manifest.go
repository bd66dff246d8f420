package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/Lllllllleong/researchpipeline/internal/api"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/pipeline"
)

// ManifestName is the object name that starts a run.
const ManifestName = "run.json"

// objectEvent is the subset of a storage object finalize payload we read.
type objectEvent struct {
	Bucket     string `json:"bucket"`
	Name       string `json:"name"`
	Generation string `json:"generation"`
}

// manifest is a run request plus the deployment to run. An empty deployment
// runs the whole pipeline.
type manifest struct {
	models.RunRequest
	Deployment string `json:"deployment,omitempty"`
}

type submitter interface {
	Deployment(ref string) (models.Deployment, error)
	Submit(ctx context.Context, dep models.Deployment, req models.RunRequest) (string, bool, error)
}

type trigger struct {
	opener    pipeline.Opener
	submitter submitter
}

// base is the gs:// URI of the directory holding the manifest.
func (o objectEvent) base() string {
	dir := path.Dir(o.Name)
	if dir == "." || dir == "/" {
		return "gs://" + o.Bucket
	}
	return "gs://" + o.Bucket + "/" + strings.Trim(dir, "/")
}

func (t *trigger) start(ctx context.Context, obj objectEvent) error {
	logCtx := slog.With("bucket", obj.Bucket, "object", obj.Name)

	base := obj.base()
	store, err := t.opener.Open(ctx, base)
	if err != nil {
		return fmt.Errorf("open %s: %w", base, err)
	}
	data, err := store.Read(ctx, ManifestName)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logCtx.Error("Invalid run manifest.", "error", err)
		return nil
	}
	if m.Parameters.Documents == "" {
		m.Parameters.Documents = base
	}
	if m.IdempotencyKey == "" {
		m.IdempotencyKey = fmt.Sprintf("%s/%s#%s", obj.Bucket, obj.Name, obj.Generation)
	}
	if m.Deployment == "" {
		m.Deployment = api.PipelineFlow
	}

	dep, err := t.submitter.Deployment(m.Deployment)
	if err != nil {
		logCtx.Error("Manifest names an unusable deployment.", "error", err)
		return nil
	}
	id, created, err := t.submitter.Submit(ctx, dep, m.RunRequest)
	if err != nil {
		if api.MapHTTPStatus(err) < 500 {
			logCtx.Error("Run manifest rejected.", "error", err)
			return nil
		}
		return err
	}

	logCtx.Info("Run started from manifest.", "run_id", id, "created", created)
	return nil
}
