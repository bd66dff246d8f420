// Package runs records the lifecycle of pipeline runs.
package runs

import (
	"context"
	"errors"
	"time"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

var (
	ErrNotFound = errors.New("run not found")
	ErrExists   = errors.New("run already exists")
)

// Update is a partial change to a run. Zero fields are left untouched.
type Update struct {
	State        models.StateType
	CurrentStage string
	ErrorDetails string
	Outputs      []string
	ExecutionID  string
	Documents    string
}

// Tracker stores run records.
type Tracker interface {
	Create(ctx context.Context, run *models.Run) error
	Get(ctx context.Context, id string) (*models.Run, error)
	// FindByIdempotencyKey returns the run created with key, or ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Run, error)
	Update(ctx context.Context, id string, u Update) error
}

func (u Update) apply(r *models.Run, now time.Time) {
	if u.State != "" {
		r.State = u.State
	}
	if u.CurrentStage != "" {
		r.CurrentStage = u.CurrentStage
	}
	if u.ErrorDetails != "" {
		r.ErrorDetails = u.ErrorDetails
	}
	if u.Outputs != nil {
		r.Outputs = append([]string(nil), u.Outputs...)
	}
	if u.ExecutionID != "" {
		r.ExecutionID = u.ExecutionID
	}
	if u.Documents != "" {
		r.Documents = u.Documents
	}
	r.UpdatedAt = now
}
