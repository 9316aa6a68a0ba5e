package webhook

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/feedforward-app/feedforward-services/api/internal/metrics"
)

// ResponseStore is the single mutation path into the survey store. The
// implementation must match the survey by ID and an unresponded recipient by
// email, then increment the counter for choice, flip responded and stamp the
// last-response time in one atomic operation. It returns whether a match
// occurred; survey missing, email not a recipient, or recipient already
// responded are all a plain false, not an error.
type ResponseStore interface {
	FindRecipientAndUpdate(ctx context.Context, surveyID, email, choice string) (bool, error)
}

// FailureSink records store failures for later inspection. Failures never
// reach the notification provider, so this is the only durable trace of them.
type FailureSink interface {
	RecordFailure(ctx context.Context, candidate Candidate, cause error)
}

// Reconciler converts a raw click-event batch into at-most-one response
// count increment per (survey, recipient) pair.
type Reconciler struct {
	store    ResponseStore
	failures FailureSink
	logger   *log.Logger
}

// NewReconciler builds a Reconciler around an explicitly injected store.
func NewReconciler(store ResponseStore, failures FailureSink, logger *log.Logger) *Reconciler {
	return &Reconciler{store: store, failures: failures, logger: logger}
}

// Process normalizes and deduplicates the batch, then issues the surviving
// candidates' conditional updates concurrently. Updates target independent
// recipient entries, so one failing does not stop the others; the aggregated
// error exists for server-side observability only and must not be surfaced
// to the notification provider.
func (r *Reconciler) Process(ctx context.Context, events []Event) error {
	metrics.WebhookEvents.Add(float64(len(events)))

	candidates := Dedupe(Normalize(events))
	if len(candidates) == 0 {
		return nil
	}

	var group errgroup.Group
	for _, candidate := range candidates {
		candidate := candidate
		group.Go(func() error {
			return r.apply(ctx, candidate)
		})
	}
	return group.Wait()
}

func (r *Reconciler) apply(ctx context.Context, candidate Candidate) error {
	matched, err := r.store.FindRecipientAndUpdate(ctx, candidate.SurveyID, candidate.Email, candidate.Choice)
	if err != nil {
		metrics.WebhookStoreFailures.Inc()
		if r.logger != nil {
			r.logger.Printf("survey response update failed: survey=%s choice=%s: %v", candidate.SurveyID, candidate.Choice, err)
		}
		if r.failures != nil {
			r.failures.RecordFailure(ctx, candidate, err)
		}
		return fmt.Errorf("apply response for survey %s: %w", candidate.SurveyID, err)
	}

	if matched {
		metrics.WebhookResponses.WithLabelValues(metrics.ResultApplied).Inc()
	} else {
		// Unknown survey, unknown recipient or an already-responded
		// recipient. Deliberately silent.
		metrics.WebhookResponses.WithLabelValues(metrics.ResultNoop).Inc()
	}
	return nil
}
