package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// SurveyRepository persists survey aggregates in MongoDB.
type SurveyRepository struct {
	surveys *mongo.Collection
}

// NewSurveyRepository binds the repository to the survey collection.
func NewSurveyRepository(db *mongo.Database, surveyCollection string) *SurveyRepository {
	return &SurveyRepository{surveys: db.Collection(surveyCollection)}
}

// Create inserts a sent survey together with its embedded recipient list.
func (r *SurveyRepository) Create(ctx context.Context, survey *domain.Survey) error {
	dateSent := survey.DateSent
	if dateSent.IsZero() {
		dateSent = time.Now().UTC()
	}

	recipients := make([]RecipientDocument, 0, len(survey.Recipients))
	for _, recipient := range survey.Recipients {
		recipients = append(recipients, RecipientDocument{Email: recipient.Email, Responded: recipient.Responded})
	}

	doc := SurveyDocument{
		ID:         survey.ID,
		UserID:     survey.UserID,
		Title:      survey.Title,
		Subject:    survey.Subject,
		Body:       survey.Body,
		DateSent:   dateSent,
		YesCount:   survey.YesCount,
		NoCount:    survey.NoCount,
		Recipients: recipients,
	}

	if _, err := r.surveys.InsertOne(ctx, doc); err != nil {
		return err
	}

	survey.DateSent = doc.DateSent
	return nil
}

// ListByUser returns a user's surveys without their recipient lists; the
// projection keeps potentially huge subdocument arrays out of the response.
func (r *SurveyRepository) ListByUser(ctx context.Context, userID string) ([]domain.Survey, error) {
	opts := options.Find().
		SetProjection(bson.M{"recipients": 0}).
		SetSort(bson.D{{Key: "dateSent", Value: -1}})

	cursor, err := r.surveys.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := make([]domain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		surveys = append(surveys, mapSurveyDocument(doc))
	}
	return surveys, cursor.Err()
}

// FindRecipientAndUpdate records one survey response as a single conditional
// update: match the survey by ID and an unresponded recipient by email, then
// increment the chosen counter, flip the matched recipient's responded flag
// and stamp the response time. The match and mutation happen in one store
// operation, so two batches racing on the same recipient cannot both count.
// A false return means nothing matched, which is a legitimate no-op.
func (r *SurveyRepository) FindRecipientAndUpdate(ctx context.Context, surveyID, email, choice string) (bool, error) {
	counter, ok := counterField(choice)
	if !ok {
		return false, nil
	}

	filter := bson.M{
		"_id": strings.TrimSpace(surveyID),
		"recipients": bson.M{
			"$elemMatch": bson.M{"email": email, "responded": false},
		},
	}
	update := bson.M{
		"$inc": bson.M{counter: 1},
		"$set": bson.M{
			"recipients.$.responded": true,
			"lastRespondedAt":        time.Now().UTC(),
		},
	}

	result, err := r.surveys.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// counterField maps a response choice onto its counter document field.
func counterField(choice string) (string, bool) {
	switch choice {
	case domain.ChoiceYes:
		return "yesCount", true
	case domain.ChoiceNo:
		return "noCount", true
	}
	return "", false
}

// mapSurveyDocument converts a stored survey into the domain model.
func mapSurveyDocument(doc SurveyDocument) domain.Survey {
	recipients := make([]domain.Recipient, 0, len(doc.Recipients))
	for _, recipient := range doc.Recipients {
		recipients = append(recipients, domain.Recipient{Email: recipient.Email, Responded: recipient.Responded})
	}

	return domain.Survey{
		ID:              doc.ID,
		UserID:          doc.UserID,
		Title:           doc.Title,
		Subject:         doc.Subject,
		Body:            doc.Body,
		DateSent:        doc.DateSent,
		YesCount:        doc.YesCount,
		NoCount:         doc.NoCount,
		LastRespondedAt: doc.LastRespondedAt,
		Recipients:      recipients,
	}
}
