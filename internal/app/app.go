// Package app assembles the pipeline from configuration: cloud clients,
// model, stages, storage, run tracking, dispatch and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/Lllllllleong/researchpipeline/internal/api"
	"github.com/Lllllllleong/researchpipeline/internal/config"
	"github.com/Lllllllleong/researchpipeline/internal/dispatch"
	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/gcp"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/pipeline"
	"github.com/Lllllllleong/researchpipeline/internal/runs"
	"github.com/Lllllllleong/researchpipeline/internal/storage"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Driver  *pipeline.Driver
	Tracker runs.Tracker
	Opener  pipeline.Opener
	API     *api.Handler

	launcher api.Launcher
	local    *dispatch.Local
	clients  *gcp.Clients
	vertex   *llm.Vertex
}

// New connects to the services cfg asks for and builds the app.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	clients, err := gcp.Open(ctx, gcp.Needs{
		Storage:    cfg.Storage.ProvisionScheme == storage.SchemeGCS,
		Firestore:  cfg.Tracking.Backend == config.TrackingFirestore,
		Executions: cfg.Dispatch.Mode == config.DispatchWorkflows,
		ProjectID:  cfg.GCP.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	vertex, err := llm.NewVertex(ctx, llm.VertexConfig{
		ProjectID:   cfg.GCP.ProjectID,
		Region:      cfg.GCP.Region,
		Temperature: cfg.Models.Temperature,
	}, logger)
	if err != nil {
		_ = clients.Close()
		return nil, err
	}

	opener := &storage.Opener{
		GCS:             clients.Storage,
		ProjectID:       cfg.GCP.ProjectID,
		Location:        cfg.Storage.Location,
		Logger:          logger,
		ProvisionScheme: cfg.Storage.ProvisionScheme,
		LocalRoot:       cfg.Storage.LocalRoot,
	}
	if cfg.Storage.AzureAccountURL != "" {
		if opener.Azure, err = storage.NewAzureClient(cfg.Storage.AzureAccountURL); err != nil {
			_ = vertex.Close()
			_ = clients.Close()
			return nil, err
		}
	}

	var tracker runs.Tracker = runs.NewMemory()
	if clients.Firestore != nil {
		tracker = runs.NewFirestore(clients.Firestore, cfg.Tracking.Collection)
	}

	a := build(cfg, logger, vertex, opener, tracker)
	a.clients = clients
	a.vertex = vertex

	if clients.Executions != nil {
		a.launcher = dispatch.NewWorkflows(clients.Executions, cfg.GCP.ProjectID, cfg.Dispatch.Location, cfg.Dispatch.WorkflowID, logger)
	}
	return a, nil
}

// build wires everything above the external clients. Runs launch in-process
// unless New replaces the launcher.
func build(cfg *config.Config, logger *slog.Logger, gen llm.Generator, opener pipeline.Opener, tracker runs.Tracker) *App {
	runner := tasks.NewRunner(gen, cfg.Retry.Task, logger)
	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	driver := pipeline.NewDriver(flows.Stages(runner, logger), opener, tracker, client, pipeline.Policies{
		Stage:    cfg.Retry.Stage,
		Transfer: cfg.Retry.Transfer,
		Webhook:  cfg.Retry.Webhook,
	}, logger)

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Driver:  driver,
		Tracker: tracker,
		Opener:  opener,
		local:   dispatch.NewLocal(driver, logger),
	}
	a.launcher = a.local
	a.API = api.NewHandler(api.Deployments(driver.Stages()), tracker, a, cfg.API.Key, logger)
	return a
}

// Launch fills configured model defaults into the request before handing it
// to the dispatcher.
func (a *App) Launch(ctx context.Context, req models.WorkerRequest) (string, error) {
	req.Parameters = a.withModelDefaults(req.Parameters)
	return a.launcher.Launch(ctx, req)
}

// Work runs a dispatched request to completion, as the worker function does.
func (a *App) Work(ctx context.Context, req models.WorkerRequest) (models.WorkerResponse, error) {
	req.Parameters = a.withModelDefaults(req.Parameters)
	runReq, err := pipeline.RequestFromWorker(req)
	if err != nil {
		return models.WorkerResponse{Status: string(models.StateFailed)}, err
	}

	res, err := a.Driver.Run(ctx, runReq)
	if err != nil {
		return models.WorkerResponse{Status: string(models.StateFailed)}, err
	}
	return models.WorkerResponse{Status: string(models.StateCompleted), Documents: res.Outputs.Names()}, nil
}

// withModelDefaults sets the configured models and concurrency for any the
// caller left out.
func (a *App) withModelDefaults(p models.RunParameters) models.RunParameters {
	opts := maps.Clone(p.FlowOptions)
	if opts == nil {
		opts = map[string]any{}
	}
	m := a.Config.Models
	if _, ok := opts["core_model"]; !ok && m.Core != "" {
		opts["core_model"] = m.Core
	}
	if _, ok := opts["small_model"]; !ok && m.Small != "" {
		opts["small_model"] = m.Small
	}
	if _, ok := opts["concurrency"]; !ok && m.Concurrency > 0 {
		opts["concurrency"] = m.Concurrency
	}
	p.FlowOptions = opts
	return p
}

// Close waits for in-process runs and releases clients.
func (a *App) Close() error {
	a.local.Wait()

	var errs []error
	if a.vertex != nil {
		errs = append(errs, a.vertex.Close())
	}
	if a.clients != nil {
		errs = append(errs, a.clients.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
