package mongo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feedforward-app/feedforward-services/api/internal/webhook"
)

// WebhookFailureRepository keeps a durable trace of reconciler store
// failures. The webhook protocol always acknowledges success, so this
// collection is the only place such failures survive for operators.
type WebhookFailureRepository struct {
	failures *mongo.Collection
	logger   *log.Logger
}

// NewWebhookFailureRepository binds the repository to the failure collection.
func NewWebhookFailureRepository(db *mongo.Database, failureCollection string, logger *log.Logger) *WebhookFailureRepository {
	return &WebhookFailureRepository{failures: db.Collection(failureCollection), logger: logger}
}

// RecordFailure persists one failed candidate update. Best effort: a failed
// insert is logged and dropped, it must never feed back into the batch.
func (r *WebhookFailureRepository) RecordFailure(ctx context.Context, candidate webhook.Candidate, cause error) {
	doc := WebhookFailureDocument{
		SurveyID:  candidate.SurveyID,
		Email:     candidate.Email,
		Choice:    candidate.Choice,
		Error:     cause.Error(),
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.failures.InsertOne(ctx, doc); err != nil && r.logger != nil {
		r.logger.Printf("failed to record webhook failure: %v", err)
	}
}
