package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// GCS stores objects in a Cloud Storage bucket, optionally below a prefix.
type GCS struct {
	client    *gcs.Client
	bucket    string
	prefix    string
	projectID string
	location  string
	logger    *slog.Logger
}

func NewGCS(client *gcs.Client, bucket, prefix, projectID, location string, logger *slog.Logger) *GCS {
	return &GCS{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		projectID: projectID,
		location:  location,
		logger:    logger.With("bucket", bucket),
	}
}

func (g *GCS) URI() string {
	if g.prefix == "" {
		return "gs://" + g.bucket
	}
	return "gs://" + g.bucket + "/" + g.prefix
}

func (g *GCS) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	object := joinKey(g.prefix, key)
	reader, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, g.bucket, object)
		}
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", g.bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object gs://%s/%s: %w", g.bucket, object, err)
	}
	return data, nil
}

func (g *GCS) Write(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	object := joinKey(g.prefix, key)
	writer := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		g.logger.Error("Failed to write GCS object.", "object", object, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		g.logger.Error("Failed to close GCS writer.", "object", object, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	full := dirPrefix(joinKey(g.prefix, dirPrefix(prefix)))
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: full, Delimiter: "/"})

	names := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", g.bucket, full, err)
		}
		if name, ok := childName(full, attrs.Name); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// CreateBase creates the bucket. A bucket that already exists is not an
// error.
func (g *GCS) CreateBase(ctx context.Context) error {
	attrs := &gcs.BucketAttrs{Location: g.location}
	err := g.client.Bucket(g.bucket).Create(ctx, g.projectID, attrs)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
			g.logger.Info("Bucket already exists.")
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", g.bucket, err)
	}
	g.logger.Info("Created GCS bucket.", "location", g.location)
	return nil
}
