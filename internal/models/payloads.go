package models

import (
	"time"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
)

// These structs define the JSON payloads exchanged with webhook receivers,
// the trigger API and the run dispatchers.

// StateType is a lifecycle state of a stage run or a whole pipeline run.
type StateType string

const (
	StatePending   StateType = "PENDING"
	StateRunning   StateType = "RUNNING"
	StateCompleted StateType = "COMPLETED"
	StateFailed    StateType = "FAILED"
	StateCancelled StateType = "CANCELLED"
	StateCrashed   StateType = "CRASHED"
)

// Terminal reports whether no further transitions follow s.
func (s StateType) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateCrashed:
		return true
	}
	return false
}

// State is a single lifecycle transition.
type State struct {
	Type      StateType `json:"type"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

// StageRun is the lifecycle snapshot carried in a status webhook.
type StageRun struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	FlowName  string     `json:"flow_name"`
	RunCount  int        `json:"run_count"`
	State     State      `json:"state"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	DocsIn    int        `json:"documents_in"`
	DocsOut   int        `json:"documents_out,omitempty"`
	Sequence  int        `json:"sequence"`
}

// StatusWebhook is posted on every stage lifecycle transition.
type StatusWebhook struct {
	ProjectName  string   `json:"project_name"`
	FlowRunID    string   `json:"flow_run_id"`
	DeploymentID string   `json:"deployment_id"`
	Data         StageRun `json:"data"`
}

// ReportWebhook is posted once after the final stage with its documents.
type ReportWebhook struct {
	ProjectName  string               `json:"project_name"`
	FlowRunID    string               `json:"flow_run_id"`
	DeploymentID string               `json:"deployment_id"`
	NewDocuments documents.Collection `json:"new_documents"`
}

// RunRequest is the body accepted by POST /deployments/{name}/runs.
type RunRequest struct {
	Parameters     RunParameters `json:"parameters"`
	Tags           []string      `json:"tags,omitempty"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
}

// RunParameters are the pipeline arguments of a run. FlowOptions stays
// untyped here; flows.DecodeOptions turns it into flows.Options.
type RunParameters struct {
	ProjectName string         `json:"project_name" firestore:"projectName"`
	Documents   string         `json:"documents" firestore:"documents"`
	FlowOptions map[string]any `json:"flow_options,omitempty" firestore:"flowOptions,omitempty"`
}

// RunResponse is returned when a run is accepted.
type RunResponse struct {
	FlowRunID string `json:"flow_run_id"`
}

// Deployment is one runnable entry exposed by the API.
type Deployment struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	FlowName string   `json:"flow_name"`
	Stages   []string `json:"stages"`
}

// WorkerRequest is the payload a dispatcher hands to a pipeline worker.
type WorkerRequest struct {
	RunID        string        `json:"flowRunId"`
	DeploymentID string        `json:"deploymentId"`
	Stages       []string      `json:"stages,omitempty"`
	Parameters   RunParameters `json:"parameters"`
}

// WorkerResponse is the worker's reply once a run finishes.
type WorkerResponse struct {
	Status    string   `json:"status"`
	Documents []string `json:"documents,omitempty"`
}
