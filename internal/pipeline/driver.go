// Package pipeline drives a run through the stages: it prepares the storage
// base, fetches remote inputs, executes each stage with retries, persists its
// output and reports progress over webhooks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
	"github.com/Lllllllleong/researchpipeline/internal/runs"
	"github.com/Lllllllleong/researchpipeline/internal/storage"
)

// Opener resolves and provisions storage bases. *storage.Opener satisfies it.
type Opener interface {
	Open(ctx context.Context, uri string) (storage.Storage, error)
	Provision(ctx context.Context, name string) (storage.Storage, error)
}

// Policies are the retry policies of the driver's own operations.
type Policies struct {
	Stage    retry.Policy
	Transfer retry.Policy
	Webhook  retry.Policy
}

// RunRequest describes one pipeline run.
type RunRequest struct {
	RunID        string
	DeploymentID string
	ProjectName  string
	// Documents is the storage base URI. Empty provisions a new base.
	Documents string
	Options   flows.Options
	// Stages restricts the run to the named stages. Empty runs all.
	Stages []string
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     string
	Documents string
	// Outputs are the documents produced by the last stage.
	Outputs documents.Collection
}

type Driver struct {
	stages   []flows.Stage
	opener   Opener
	tracker  runs.Tracker
	client   *http.Client
	policies Policies
	logger   *slog.Logger
	now      func() time.Time
}

func NewDriver(stages []flows.Stage, opener Opener, tracker runs.Tracker, client *http.Client, policies Policies, logger *slog.Logger) *Driver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Driver{
		stages:   stages,
		opener:   opener,
		tracker:  tracker,
		client:   client,
		policies: policies,
		logger:   logger,
		now:      time.Now,
	}
}

// Stages returns the stages the driver can run.
func (d *Driver) Stages() []flows.Stage {
	return d.stages
}

// Run executes req. Stages run strictly in order; uploads and status
// webhooks are awaited before Run returns.
func (d *Driver) Run(ctx context.Context, req RunRequest) (res *Result, err error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	opts := req.Options.WithDefaults()
	logCtx := d.logger.With("run_id", req.RunID, "project", req.ProjectName)

	stages, err := flows.Select(d.stages, req.Stages...)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, ErrNoStages
	}

	d.ensureRun(ctx, req, logCtx)
	d.track(ctx, req.RunID, runs.Update{State: models.StateRunning}, logCtx)
	defer func() {
		u := runs.Update{State: models.StateCompleted}
		if err != nil {
			u = runs.Update{State: failureState(ctx, err), ErrorDetails: err.Error()}
		} else {
			u.Outputs = res.Outputs.Names()
		}
		d.track(context.WithoutCancel(ctx), req.RunID, u, logCtx)
	}()

	store, err := d.openBase(ctx, req, logCtx)
	if err != nil {
		return nil, err
	}
	logCtx = logCtx.With("documents", store.URI())

	if len(opts.InputDocumentURLs) > 0 {
		if err := d.acquireInputs(ctx, stages[0], store, opts, logCtx); err != nil {
			return nil, err
		}
	}

	notifier := NewStatusNotifier(d.client, opts.StatusWebhookURL, d.policies.Webhook, logCtx)
	uploads := &uploader{client: d.client, policy: d.policies.Transfer, logger: logCtx}
	defer func() {
		uploads.wait()
		notifier.Wait()
	}()

	var produced documents.Collection
	for i, stage := range stages {
		logCtx.Info("Starting stage.", "stage", stage.Name, "index", i+1, "total", len(stages))
		produced, err = d.runStage(ctx, req, stage, store, opts, notifier, logCtx)
		if err != nil {
			logCtx.Error("Stage failed.", "stage", stage.Name, "error", err)
			return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		logCtx.Info("Stage produced documents.", "stage", stage.Name, "count", len(produced))
		uploads.queue(ctx, produced, opts.OutputDocumentURLs)
	}

	if opts.ReportWebhookURL != "" {
		payload := models.ReportWebhook{
			ProjectName:  req.ProjectName,
			FlowRunID:    req.RunID,
			DeploymentID: req.DeploymentID,
			NewDocuments: produced,
		}
		err := retry.Do(ctx, d.policies.Webhook, logCtx, "report webhook", func(ctx context.Context) error {
			return postJSON(ctx, d.client, opts.ReportWebhookURL, payload)
		})
		if err != nil {
			return nil, fmt.Errorf("report webhook: %w", err)
		}
		logCtx.Info("Report webhook delivered.", "documents", len(produced))
	}

	logCtx.Info("Pipeline run complete.")
	return &Result{RunID: req.RunID, Documents: store.URI(), Outputs: produced}, nil
}

func (d *Driver) openBase(ctx context.Context, req RunRequest, logCtx *slog.Logger) (storage.Storage, error) {
	if req.Documents != "" {
		store, err := d.opener.Open(ctx, req.Documents)
		if err != nil {
			return nil, fmt.Errorf("open documents %s: %w", req.Documents, err)
		}
		return store, nil
	}

	name := BucketName(req.ProjectName, d.now())
	store, err := d.opener.Provision(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("provision storage %s: %w", name, err)
	}
	logCtx.Info("Provisioned storage base.", "uri", store.URI())
	d.track(ctx, req.RunID, runs.Update{Documents: store.URI()}, logCtx)
	return store, nil
}

// acquireInputs downloads every input URL concurrently and stores the files
// under the first stage's only input family.
func (d *Driver) acquireInputs(ctx context.Context, first flows.Stage, store storage.Storage, opts flows.Options, logCtx *slog.Logger) error {
	families := first.Config.InputFamilies
	if len(families) != 1 {
		return fmt.Errorf("%w: %s declares %d", ErrInputFamilies, first.Name, len(families))
	}
	family := families[0]

	files := make([]RemoteFile, len(opts.InputDocumentURLs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, u := range opts.InputDocumentURLs {
		g.Go(func() error {
			f, err := retry.Value(gctx, d.policies.Transfer, logCtx, "download", func(ctx context.Context) (RemoteFile, error) {
				return Download(ctx, d.client, u)
			})
			if err != nil {
				return err
			}
			logCtx.Info("Downloaded input document.", "file", f.Name, "bytes", len(f.Data))
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("download inputs: %w", err)
	}

	for _, f := range files {
		doc, err := documents.New(family, f.Name, f.Data)
		if err != nil {
			return fmt.Errorf("input %s: %w", f.Name, err)
		}
		if doc.MimeType() == "application/pdf" {
			if doc, err = documents.New(family, f.Name, optimizePDF(logCtx, f.Name, f.Data)); err != nil {
				return fmt.Errorf("input %s: %w", f.Name, err)
			}
		}
		if err := store.Write(ctx, doc.Key(), doc.Content(), doc.MimeType()); err != nil {
			return fmt.Errorf("store input %s: %w", f.Name, err)
		}
	}
	return nil
}

// runStage loads the stage's inputs and runs it under the stage retry policy,
// validates and saves its output, and reports each transition.
func (d *Driver) runStage(ctx context.Context, req RunRequest, stage flows.Stage, store storage.Storage, opts flows.Options, notifier *StatusNotifier, logCtx *slog.Logger) (documents.Collection, error) {
	logCtx = logCtx.With("stage", stage.Name)
	d.track(ctx, req.RunID, runs.Update{CurrentStage: stage.Name}, logCtx)

	sr := models.StageRun{
		ID:       uuid.NewString(),
		Name:     stage.Name + "-" + req.ProjectName,
		FlowName: stage.Name,
	}
	notify := func(state models.StateType, message string) {
		now := d.now()
		sr.State = models.State{Type: state, Name: stateName(state), Timestamp: now, Message: message}
		if state == models.StateRunning && sr.StartTime == nil {
			sr.StartTime = &now
		}
		if state.Terminal() {
			sr.EndTime = &now
		}
		notifier.Notify(ctx, models.StatusWebhook{
			ProjectName:  req.ProjectName,
			FlowRunID:    req.RunID,
			DeploymentID: req.DeploymentID,
			Data:         sr,
		})
	}
	fail := func(err error) (documents.Collection, error) {
		notify(failureState(ctx, err), err.Error())
		return nil, err
	}

	// Inputs are loaded after the Running notification so every failure,
	// loading included, follows a reported start.
	out, err := retry.Value(ctx, d.policies.Stage, logCtx, stage.Name, func(ctx context.Context) (documents.Collection, error) {
		sr.RunCount++
		notify(models.StateRunning, "")
		docs, err := stage.Config.LoadDocuments(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("load inputs: %w", err)
		}
		sr.DocsIn = len(docs)
		return attempt(ctx, stage, req.ProjectName, docs, opts)
	})
	if err != nil {
		return fail(err)
	}
	if err := stage.Config.SaveDocuments(ctx, store, out); err != nil {
		return fail(err)
	}

	sr.DocsOut = len(out)
	notify(models.StateCompleted, "")
	return out, nil
}

// attempt runs the stage once. Lookup failures, contract violations and
// panics end the stage without further retries.
func attempt(ctx context.Context, stage flows.Stage, projectName string, docs documents.Collection, opts flows.Options) (out documents.Collection, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, retry.Permanent(fmt.Errorf("%w: %v", ErrStagePanic, r))
		}
	}()

	out, err = stage.Run(ctx, projectName, stage.Config.GetInputDocuments(docs), opts)
	if err != nil {
		if errors.Is(err, documents.ErrLookup) || errors.Is(err, flows.ErrContractViolation) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	return stage.Config.CreateAndValidateOutput(out...)
}

func failureState(ctx context.Context, err error) models.StateType {
	switch {
	case errors.Is(err, ErrStagePanic):
		return models.StateCrashed
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return models.StateCancelled
	default:
		return models.StateFailed
	}
}

func stateName(s models.StateType) string {
	switch s {
	case models.StatePending:
		return "Pending"
	case models.StateRunning:
		return "Running"
	case models.StateCompleted:
		return "Completed"
	case models.StateFailed:
		return "Failed"
	case models.StateCancelled:
		return "Cancelled"
	case models.StateCrashed:
		return "Crashed"
	default:
		return string(s)
	}
}

// ensureRun creates the run record when the caller did not.
func (d *Driver) ensureRun(ctx context.Context, req RunRequest, logCtx *slog.Logger) {
	if d.tracker == nil {
		return
	}
	_, err := d.tracker.Get(ctx, req.RunID)
	if err == nil {
		return
	}
	if !errors.Is(err, runs.ErrNotFound) {
		logCtx.Warn("Failed to look up run record.", "error", err)
		return
	}

	run := &models.Run{
		ID:           req.RunID,
		Name:         "research_pipeline-" + req.ProjectName,
		DeploymentID: req.DeploymentID,
		ProjectName:  req.ProjectName,
		Documents:    req.Documents,
		State:        models.StatePending,
		Parameters:   models.RunParameters{ProjectName: req.ProjectName, Documents: req.Documents},
	}
	if err := d.tracker.Create(ctx, run); err != nil && !errors.Is(err, runs.ErrExists) {
		logCtx.Warn("Failed to create run record.", "error", err)
	}
}

// track records a run update. Tracking failures never fail the run.
func (d *Driver) track(ctx context.Context, runID string, u runs.Update, logCtx *slog.Logger) {
	if d.tracker == nil {
		return
	}
	if err := d.tracker.Update(ctx, runID, u); err != nil {
		logCtx.Warn("Failed to update run record.", "error", err, "state", u.State)
	}
}

// uploader delivers produced documents in the background.
type uploader struct {
	client *http.Client
	policy retry.Policy
	logger *slog.Logger
	wg     sync.WaitGroup
}

func (u *uploader) queue(ctx context.Context, docs documents.Collection, targets map[string]flows.OutputTarget) {
	for _, doc := range docs {
		target, ok := targets[doc.Name()]
		if !ok {
			continue
		}
		u.wg.Add(1)
		go func() {
			defer u.wg.Done()
			err := retry.Do(ctx, u.policy, u.logger, "upload "+doc.Name(), func(ctx context.Context) error {
				return Upload(ctx, u.client, target, doc)
			})
			if err != nil {
				u.logger.Warn("Failed to upload output document.", "file", doc.Name(), "error", err)
				return
			}
			u.logger.Info("Uploaded output document.", "file", doc.Name())
		}()
	}
}

func (u *uploader) wait() {
	u.wg.Wait()
}
