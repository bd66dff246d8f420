package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

type fakeWorker struct {
	got models.WorkerRequest
	err error
}

func (f *fakeWorker) Work(_ context.Context, req models.WorkerRequest) (models.WorkerResponse, error) {
	f.got = req
	if f.err != nil {
		return models.WorkerResponse{Status: string(models.StateFailed)}, f.err
	}
	return models.WorkerResponse{Status: string(models.StateCompleted), Documents: []string{"full_report.md"}}, nil
}

func TestHandle(t *testing.T) {
	wk := &fakeWorker{}
	body := `{"flowRunId":"run-1","deploymentId":"d-1","stages":["report_flow"],"parameters":{"project_name":"acme","documents":"gs://b"}}`
	rec := httptest.NewRecorder()
	handle(wk, rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", wk.got.RunID)
	assert.Equal(t, []string{"report_flow"}, wk.got.Stages)
	assert.Equal(t, "gs://b", wk.got.Parameters.Documents)

	var resp models.WorkerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"full_report.md"}, resp.Documents)
}

func TestHandle_Failures(t *testing.T) {
	rec := httptest.NewRecorder()
	handle(&fakeWorker{}, rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handle(&fakeWorker{}, rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handle(&fakeWorker{err: assert.AnError}, rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"parameters":{"project_name":"x"}}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), string(models.StateFailed))
}
