package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// Workflows hands each run to a Cloud Workflows execution. The workflow
// receives the worker request as its argument.
type Workflows struct {
	client *executions.Client
	parent string
	logger *slog.Logger
}

func NewWorkflows(client *executions.Client, projectID, location, workflowID string, logger *slog.Logger) *Workflows {
	return &Workflows{
		client: client,
		parent: WorkflowParent(projectID, location, workflowID),
		logger: logger,
	}
}

// WorkflowParent is the resource name executions are created under.
func WorkflowParent(projectID, location, workflowID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID)
}

// Launch creates an execution and returns its resource name.
func (w *Workflows) Launch(ctx context.Context, req models.WorkerRequest) (string, error) {
	logCtx := w.logger.With("run_id", req.RunID, "workflow", w.parent)
	logCtx.Info("Triggering workflow.")

	execReq, err := executionRequest(w.parent, req)
	if err != nil {
		return "", err
	}
	exec, err := w.client.CreateExecution(ctx, execReq)
	if err != nil {
		logCtx.Error("Failed to trigger workflow execution.", "error", err)
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}

	logCtx.Info("Hand-off to workflow complete.", "execution", exec.GetName())
	return exec.GetName(), nil
}

func executionRequest(parent string, req models.WorkerRequest) (*executionspb.CreateExecutionRequest, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	return &executionspb.CreateExecutionRequest{
		Parent: parent,
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}, nil
}
