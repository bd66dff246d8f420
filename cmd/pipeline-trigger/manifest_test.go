package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/api"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/storage"
)

// dirOpener serves every URI from one local directory and records the URI.
type dirOpener struct {
	root   string
	opened string
}

func (d *dirOpener) Open(_ context.Context, uri string) (storage.Storage, error) {
	d.opened = uri
	return storage.NewLocal(d.root)
}

func (d *dirOpener) Provision(context.Context, string) (storage.Storage, error) {
	return storage.NewLocal(d.root)
}

type fakeSubmitter struct {
	dep models.Deployment
	req models.RunRequest
	err error
}

func (f *fakeSubmitter) Deployment(ref string) (models.Deployment, error) {
	if ref == "missing" {
		return models.Deployment{}, api.ErrDeploymentNotFound
	}
	return models.Deployment{ID: "d-" + ref, Name: ref}, nil
}

func (f *fakeSubmitter) Submit(_ context.Context, dep models.Deployment, req models.RunRequest) (string, bool, error) {
	f.dep, f.req = dep, req
	return "run-1", true, f.err
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0o644))
	return dir
}

func TestObjectEvent_Base(t *testing.T) {
	assert.Equal(t, "gs://b", objectEvent{Bucket: "b", Name: "run.json"}.base())
	assert.Equal(t, "gs://b/acme/deal", objectEvent{Bucket: "b", Name: "acme/deal/run.json"}.base())
}

func TestTrigger_Start(t *testing.T) {
	opener := &dirOpener{root: writeManifest(t, `{"parameters":{"project_name":"acme"},"tags":["drop"]}`)}
	sub := &fakeSubmitter{}
	tr := &trigger{opener: opener, submitter: sub}

	err := tr.start(context.Background(), objectEvent{Bucket: "deals", Name: "acme/run.json", Generation: "42"})
	require.NoError(t, err)

	assert.Equal(t, "gs://deals/acme", opener.opened)
	assert.Equal(t, api.PipelineFlow, sub.dep.Name)
	assert.Equal(t, "acme", sub.req.Parameters.ProjectName)
	assert.Equal(t, "gs://deals/acme", sub.req.Parameters.Documents)
	assert.Equal(t, "deals/acme/run.json#42", sub.req.IdempotencyKey)
	assert.Equal(t, []string{"drop"}, sub.req.Tags)
}

func TestTrigger_ManifestOverrides(t *testing.T) {
	opener := &dirOpener{root: writeManifest(t, `{"deployment":"review","idempotency_key":"mine","parameters":{"project_name":"acme","documents":"gs://elsewhere"}}`)}
	sub := &fakeSubmitter{}
	tr := &trigger{opener: opener, submitter: sub}

	require.NoError(t, tr.start(context.Background(), objectEvent{Bucket: "deals", Name: "run.json"}))
	assert.Equal(t, "review", sub.dep.Name)
	assert.Equal(t, "gs://elsewhere", sub.req.Parameters.Documents)
	assert.Equal(t, "mine", sub.req.IdempotencyKey)
}

func TestTrigger_RejectionsAreNotRetried(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		err      error
		wantErr  bool
	}{
		{"invalid json", "{", nil, false},
		{"unknown deployment", `{"deployment":"missing","parameters":{"project_name":"acme"}}`, nil, false},
		{"invalid request", `{"parameters":{}}`, api.ErrInvalidRequest, false},
		{"launch failure", `{"parameters":{"project_name":"acme"}}`, api.ErrLaunchFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trigger{opener: &dirOpener{root: writeManifest(t, tt.manifest)}, submitter: &fakeSubmitter{err: tt.err}}
			err := tr.start(context.Background(), objectEvent{Bucket: "b", Name: "run.json"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTrigger_MissingManifest(t *testing.T) {
	tr := &trigger{opener: &dirOpener{root: t.TempDir()}, submitter: &fakeSubmitter{}}
	err := tr.start(context.Background(), objectEvent{Bucket: "b", Name: "run.json"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
