package models

import "time"

// Run is the tracked record of one pipeline execution. It is stored in
// Firestore by the runs tracker and returned by GET /runs/{id}.
type Run struct {
	ID             string        `firestore:"id" json:"id"`
	Name           string        `firestore:"name" json:"name"`
	DeploymentID   string        `firestore:"deploymentId" json:"deployment_id"`
	DeploymentName string        `firestore:"deploymentName" json:"deployment_name"`
	ProjectName    string        `firestore:"projectName" json:"project_name"`
	Documents      string        `firestore:"documents,omitempty" json:"documents,omitempty"`
	Tags           []string      `firestore:"tags,omitempty" json:"tags,omitempty"`
	IdempotencyKey string        `firestore:"idempotencyKey,omitempty" json:"idempotency_key,omitempty"`
	State          StateType     `firestore:"state" json:"state"`
	CurrentStage   string        `firestore:"currentStage,omitempty" json:"current_stage,omitempty"`
	ErrorDetails   string        `firestore:"errorDetails,omitempty" json:"error_details,omitempty"`
	Outputs        []string      `firestore:"outputs,omitempty" json:"outputs,omitempty"`
	ExecutionID    string        `firestore:"workflowExecutionId,omitempty" json:"workflow_execution_id,omitempty"`
	Parameters     RunParameters `firestore:"parameters" json:"parameters"`
	CreatedAt      time.Time     `firestore:"createdAt" json:"created_at"`
	UpdatedAt      time.Time     `firestore:"updatedAt" json:"updated_at"`
}
