package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/pipeline"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingRunner struct {
	mu   sync.Mutex
	reqs []pipeline.RunRequest
	ctxs []context.Context
}

func (r *recordingRunner) Run(ctx context.Context, req pipeline.RunRequest) (*pipeline.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	r.ctxs = append(r.ctxs, ctx)
	return &pipeline.Result{RunID: req.RunID}, nil
}

func TestLocal_LaunchDetachesFromCaller(t *testing.T) {
	runner := &recordingRunner{}
	l := NewLocal(runner, discard)

	ctx, cancel := context.WithCancel(context.Background())
	execID, err := l.Launch(ctx, models.WorkerRequest{
		RunID:      "run-1",
		Parameters: models.RunParameters{ProjectName: "acme"},
	})
	cancel()
	require.NoError(t, err)
	assert.Empty(t, execID)

	l.Wait()
	require.Len(t, runner.reqs, 1)
	assert.Equal(t, "run-1", runner.reqs[0].RunID)
	assert.Equal(t, flows.DefaultCoreModel, runner.reqs[0].Options.CoreModel)
	assert.NoError(t, runner.ctxs[0].Err())
}

func TestLocal_RejectsInvalidOptions(t *testing.T) {
	l := NewLocal(&recordingRunner{}, discard)
	_, err := l.Launch(context.Background(), models.WorkerRequest{Parameters: models.RunParameters{
		FlowOptions: map[string]any{"status_webhook_url": "nope"},
	}})
	assert.ErrorIs(t, err, flows.ErrInvalidOptions)
}

func TestExecutionRequest(t *testing.T) {
	parent := WorkflowParent("acme-prod", "us-central1", "research-pipeline")
	assert.Equal(t, "projects/acme-prod/locations/us-central1/workflows/research-pipeline", parent)

	req, err := executionRequest(parent, models.WorkerRequest{
		RunID:        "run-1",
		DeploymentID: "dep-1",
		Parameters:   models.RunParameters{ProjectName: "acme", Documents: "gs://acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, parent, req.GetParent())

	var arg map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.GetExecution().GetArgument()), &arg))
	assert.Equal(t, "run-1", arg["flowRunId"])
	assert.Equal(t, "acme", arg["parameters"].(map[string]any)["project_name"])
}
