package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// StatusNotifier posts status webhooks in the order Notify was called
// without blocking the caller. Each delivery starts only after the previous
// one has finished, successfully or not.
type StatusNotifier struct {
	client *http.Client
	url    string
	policy retry.Policy
	logger *slog.Logger

	mu sync.Mutex
	last chan struct{}
	seq int
}

// NewStatusNotifier returns a notifier posting to url. An empty url makes
// Notify a no-op.
func NewStatusNotifier(client *http.Client, url string, policy retry.Policy, logger *slog.Logger) *StatusNotifier {
	return &StatusNotifier{client: client, url: url, policy: policy, logger: logger}
}

// Notify queues payload behind every earlier notification and returns
// immediately. Failed deliveries are logged and do not stop the chain.
func (n *StatusNotifier) Notify(ctx context.Context, payload models.StatusWebhook) {
	if n.url == "" {
		return
	}

	n.mu.Lock()
	prev := n.last
	done := make(chan struct{})
	n.last = done
	n.seq++
	payload.Data.Sequence = n.seq
	n.mu.Unlock()

	// Deliveries outlive cancellation so a cancelled run still reports it.
	ctx = context.WithoutCancel(ctx)
	logCtx := n.logger.With("stage", payload.Data.FlowName, "state", payload.Data.State.Type, "sequence", payload.Data.Sequence)
	logCtx.Debug("Queueing status webhook.", "url", n.url)

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		err := retry.Do(ctx, n.policy, logCtx, "status webhook", func(ctx context.Context) error {
			return postJSON(ctx, n.client, n.url, payload)
		})
		if err != nil {
			logCtx.Warn("Status webhook delivery failed.", "error", err)
		}
	}()
}

// Wait blocks until every queued notification has been attempted.
func (n *StatusNotifier) Wait() {
	n.mu.Lock()
	last := n.last
	n.mu.Unlock()
	if last != nil {
		<-last
	}
}
