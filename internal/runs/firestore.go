package runs

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// Firestore keeps one document per run, keyed by run id.
type Firestore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewFirestore(client *firestore.Client, collection string) *Firestore {
	return &Firestore{client: client, collection: collection, now: time.Now}
}

func (f *Firestore) doc(id string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(id)
}

func (f *Firestore) Create(ctx context.Context, run *models.Run) error {
	now := f.now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	if _, err := f.doc(run.ID).Create(ctx, run); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: %s", ErrExists, run.ID)
		}
		return fmt.Errorf("failed to create run document: %w", err)
	}
	return nil
}

func (f *Firestore) Get(ctx context.Context, id string) (*models.Run, error) {
	snap, err := f.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run document: %w", err)
	}

	var run models.Run
	if err := snap.DataTo(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run document %s: %w", id, err)
	}
	return &run, nil
}

func (f *Firestore) FindByIdempotencyKey(ctx context.Context, key string) (*models.Run, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty idempotency key", ErrNotFound)
	}

	docs, err := f.client.Collection(f.collection).Where("idempotencyKey", "==", key).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query for idempotency key: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: idempotency key %q", ErrNotFound, key)
	}

	var run models.Run
	if err := docs[0].DataTo(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run document %s: %w", docs[0].Ref.ID, err)
	}
	return &run, nil
}

func (f *Firestore) Update(ctx context.Context, id string, u Update) error {
	if _, err := f.doc(id).Update(ctx, firestoreUpdates(u, f.now())); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to update run document: %w", err)
	}
	return nil
}

// firestoreUpdates maps the set fields of u to document paths.
func firestoreUpdates(u Update, now time.Time) []firestore.Update {
	updates := []firestore.Update{{Path: "updatedAt", Value: now}}
	if u.State != "" {
		updates = append(updates, firestore.Update{Path: "state", Value: string(u.State)})
	}
	if u.CurrentStage != "" {
		updates = append(updates, firestore.Update{Path: "currentStage", Value: u.CurrentStage})
	}
	if u.ErrorDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: u.ErrorDetails})
	}
	if u.Outputs != nil {
		updates = append(updates, firestore.Update{Path: "outputs", Value: u.Outputs})
	}
	if u.ExecutionID != "" {
		updates = append(updates, firestore.Update{Path: "workflowExecutionId", Value: u.ExecutionID})
	}
	if u.Documents != "" {
		updates = append(updates, firestore.Update{Path: "documents", Value: u.Documents})
	}
	return updates
}
