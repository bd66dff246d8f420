// Package api exposes the trigger and status endpoints used to start
// pipeline runs and follow their progress.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/runs"
)

// Launcher starts an accepted run and returns an execution id, if any.
type Launcher interface {
	Launch(ctx context.Context, req models.WorkerRequest) (string, error)
}

type Handler struct {
	deployments []models.Deployment
	tracker     runs.Tracker
	launcher    Launcher
	apiKey      string
	logger      *slog.Logger
	newID       func() string
}

func NewHandler(deployments []models.Deployment, tracker runs.Tracker, launcher Launcher, apiKey string, logger *slog.Logger) *Handler {
	return &Handler{
		deployments: deployments,
		tracker:     tracker,
		launcher:    launcher,
		apiKey:      apiKey,
		logger:      logger.With("handler", "api"),
		newID:       uuid.NewString,
	}
}

// Routes returns the API with logging on every route and key checks on all
// but /health.
func (h *Handler) Routes() http.Handler {
	protected := &Middleware{}
	protected.Use(RequireKey(h.apiKey, h.logger))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /deployments", protected.Apply(http.HandlerFunc(h.ListDeployments)))
	mux.Handle("POST /deployments/{name}/runs", protected.Apply(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /runs/{id}", protected.Apply(http.HandlerFunc(h.GetRun)))

	outer := &Middleware{}
	outer.Use(Logger(h.logger))
	return outer.Apply(mux)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.deployments)
}

// CreateRun accepts a run for the named deployment. A repeated idempotency
// key returns the original run id with 200 instead of 201.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	dep, err := findDeployment(h.deployments, r.PathValue("name"))
	if err != nil {
		RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req models.RunRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	id, created, err := h.Submit(r.Context(), dep, req)
	if err != nil {
		RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	RespondJSON(w, status, models.RunResponse{FlowRunID: id})
}

// Submit validates req, records a pending run for dep and launches it. It
// reports created=false when the idempotency key names an existing run.
func (h *Handler) Submit(ctx context.Context, dep models.Deployment, req models.RunRequest) (string, bool, error) {
	if strings.TrimSpace(req.Parameters.ProjectName) == "" {
		return "", false, fmt.Errorf("%w: parameters.project_name is required", ErrInvalidRequest)
	}
	if _, err := flows.DecodeOptions(req.Parameters.FlowOptions); err != nil {
		return "", false, err
	}

	if req.IdempotencyKey != "" {
		existing, err := h.tracker.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			return existing.ID, false, nil
		case !errors.Is(err, runs.ErrNotFound):
			return "", false, err
		}
	}

	id := h.newID()
	if req.IdempotencyKey != "" {
		id = idempotentRunID(req.IdempotencyKey)
	}
	run := &models.Run{
		ID:             id,
		Name:           dep.FlowName + "-" + req.Parameters.ProjectName,
		DeploymentID:   dep.ID,
		DeploymentName: dep.Name,
		ProjectName:    req.Parameters.ProjectName,
		Documents:      req.Parameters.Documents,
		Tags:           req.Tags,
		IdempotencyKey: req.IdempotencyKey,
		State:          models.StatePending,
		Parameters:     req.Parameters,
	}
	if err := h.tracker.Create(ctx, run); err != nil {
		if req.IdempotencyKey != "" && errors.Is(err, runs.ErrExists) {
			return run.ID, false, nil
		}
		return "", false, err
	}
	logCtx := h.logger.With("run_id", run.ID, "deployment", dep.Name)

	execID, err := h.launcher.Launch(ctx, models.WorkerRequest{
		RunID:        run.ID,
		DeploymentID: dep.ID,
		Stages:       dep.Stages,
		Parameters:   req.Parameters,
	})
	if err != nil {
		if uerr := h.tracker.Update(ctx, run.ID, runs.Update{State: models.StateFailed, ErrorDetails: err.Error()}); uerr != nil {
			logCtx.Error("CRITICAL: Failed to mark run as failed after a launch error.", "updateError", uerr)
		}
		return "", false, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}
	if execID != "" {
		if err := h.tracker.Update(ctx, run.ID, runs.Update{ExecutionID: execID}); err != nil {
			logCtx.Warn("Failed to record execution id.", "error", err)
		}
	}

	logCtx.Info("Run accepted.", "execution", execID)
	return run.ID, true, nil
}

// idempotentRunID derives the run id from an idempotency key, so concurrent
// submissions with one key collide on create and only one run is launched.
func idempotentRunID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("research-pipeline/run/"+key)).String()
}

// Deployment resolves a deployment reference the way the runs route does.
func (h *Handler) Deployment(ref string) (models.Deployment, error) {
	return findDeployment(h.deployments, ref)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.tracker.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	RespondJSON(w, http.StatusOK, run)
}
