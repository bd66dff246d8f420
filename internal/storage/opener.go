package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Schemes accepted by Opener.
const (
	SchemeGCS   = "gs"
	SchemeAzure = "az"
	SchemeFile  = "file"
)

// Opener resolves base URIs to Storage backends. Clients left nil make the
// matching scheme unavailable.
type Opener struct {
	GCS       *gcs.Client
	Azure     *azblob.Client
	ProjectID string
	Location  string
	Logger    *slog.Logger

	// ProvisionScheme selects where Provision creates new bases.
	ProvisionScheme string
	// LocalRoot is the parent directory of provisioned local bases.
	LocalRoot string
}

func (o *Opener) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Open returns the storage for uri: gs://bucket[/prefix],
// az://container[/prefix], file://path or a bare filesystem path.
func (o *Opener) Open(_ context.Context, uri string) (Storage, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty uri", ErrUnsupportedScheme)
	}
	if !strings.Contains(uri, "://") {
		return NewLocal(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse storage uri %q: %w", uri, err)
	}

	switch u.Scheme {
	case SchemeFile:
		return NewLocal(filepath.FromSlash(u.Host + u.Path))
	case SchemeGCS:
		if o.GCS == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, uri)
		}
		return NewGCS(o.GCS, u.Host, u.Path, o.ProjectID, o.Location, o.logger()), nil
	case SchemeAzure:
		if o.Azure == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, uri)
		}
		return NewAzure(o.Azure, u.Host, u.Path, o.logger()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Provision creates a new base named name using ProvisionScheme and returns
// its storage.
func (o *Opener) Provision(ctx context.Context, name string) (Storage, error) {
	var uri string
	switch o.ProvisionScheme {
	case SchemeGCS, "":
		uri = "gs://" + name
	case SchemeAzure:
		uri = "az://" + name
	case SchemeFile:
		uri = filepath.Join(o.LocalRoot, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, o.ProvisionScheme)
	}

	s, err := o.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := s.CreateBase(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
