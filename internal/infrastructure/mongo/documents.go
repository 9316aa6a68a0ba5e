package mongo

import "time"

// RecipientDocument is one entry of a survey's embedded recipient list.
type RecipientDocument struct {
	Email     string `bson:"email"`
	Responded bool   `bson:"responded"`
}

// SurveyDocument is the MongoDB schema of a sent survey. The _id is the
// UUID embedded in the tracked response links at send time.
type SurveyDocument struct {
	ID              string              `bson:"_id"`
	UserID          string              `bson:"userId"`
	Title           string              `bson:"title"`
	Subject         string              `bson:"subject"`
	Body            string              `bson:"body"`
	DateSent        time.Time           `bson:"dateSent"`
	YesCount        int                 `bson:"yesCount"`
	NoCount         int                 `bson:"noCount"`
	LastRespondedAt *time.Time          `bson:"lastRespondedAt,omitempty"`
	Recipients      []RecipientDocument `bson:"recipients,omitempty"`
}

// UserDocument keys users by the auth subject and carries the credit balance.
type UserDocument struct {
	ID        string    `bson:"_id"`
	Credits   int       `bson:"credits"`
	CreatedAt time.Time `bson:"createdAt"`
}

// WebhookFailureDocument records one response update that the store rejected,
// kept for manual replay.
type WebhookFailureDocument struct {
	SurveyID  string    `bson:"surveyId"`
	Email     string    `bson:"email"`
	Choice    string    `bson:"choice"`
	Error     string    `bson:"error"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"createdAt"`
}
