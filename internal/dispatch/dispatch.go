// Package dispatch starts accepted runs, either in-process or as Cloud
// Workflows executions that call the pipeline worker.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/pipeline"
)

// Runner executes a run to completion. *pipeline.Driver satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.RunRequest) (*pipeline.Result, error)
}

// Local runs each launched pipeline in its own goroutine.
type Local struct {
	runner Runner
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewLocal(runner Runner, logger *slog.Logger) *Local {
	return &Local{runner: runner, logger: logger}
}

// Launch starts the run in the background and returns immediately. The run
// is not tied to ctx, which usually belongs to an HTTP request.
func (l *Local) Launch(ctx context.Context, req models.WorkerRequest) (string, error) {
	runReq, err := pipeline.RequestFromWorker(req)
	if err != nil {
		return "", err
	}

	runCtx := context.WithoutCancel(ctx)
	logCtx := l.logger.With("run_id", req.RunID)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if _, err := l.runner.Run(runCtx, runReq); err != nil {
			logCtx.Error("Pipeline run failed.", "error", err)
			return
		}
		logCtx.Info("Pipeline run finished.")
	}()
	return "", nil
}

// Wait blocks until every launched run has returned.
func (l *Local) Wait() {
	l.wg.Wait()
}
