// Package gcp creates the Google Cloud clients shared by the entry points.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
)

// NewStorageClient creates a Cloud Storage client using application default
// credentials.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// NewFirestoreClient opens the Firestore database of projectID that holds
// run records.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

func NewExecutionsClient(ctx context.Context) (*executions.Client, error) {
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow executions client: %w", err)
	}
	return client, nil
}

// Clients holds whichever clients an entry point opened. Nil fields were not
// requested.
type Clients struct {
	Storage    *storage.Client
	Firestore  *firestore.Client
	Executions *executions.Client
}

// Needs selects the clients to open.
type Needs struct {
	Storage    bool
	Firestore  bool
	Executions bool
	ProjectID  string
}

// Open creates the requested clients. On failure the ones already created
// are closed.
func Open(ctx context.Context, needs Needs) (*Clients, error) {
	c := &Clients{}
	var err error

	if needs.Storage {
		if c.Storage, err = NewStorageClient(ctx); err != nil {
			return nil, err
		}
	}
	if needs.Firestore {
		if c.Firestore, err = NewFirestoreClient(ctx, needs.ProjectID); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	if needs.Executions {
		if c.Executions, err = NewExecutionsClient(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Clients) Close() error {
	var closers []io.Closer
	if c.Storage != nil {
		closers = append(closers, c.Storage)
	}
	if c.Firestore != nil {
		closers = append(closers, c.Firestore)
	}
	if c.Executions != nil {
		closers = append(closers, c.Executions)
	}

	var errs []error
	for _, cl := range closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
