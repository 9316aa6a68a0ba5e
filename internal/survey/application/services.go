package application

import (
	"context"
	"errors"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// ErrInsufficientCredits is returned when a send is attempted without any
// survey credits left on the account.
var ErrInsufficientCredits = errors.New("not enough credits")

// ErrUserNotFound is returned when the authenticated subject has no user
// record, which only happens if the upsert on login was skipped.
var ErrUserNotFound = errors.New("user not found")

// SurveyRepository handles survey persistence.
type SurveyRepository interface {
	Create(ctx context.Context, survey *domain.Survey) error
	ListByUser(ctx context.Context, userID string) ([]domain.Survey, error)
}

// UserRepository handles user identity and credit balances. AddCredits and
// DeductCredit are single conditional store operations, never a read-then-
// write pair, so concurrent requests cannot race a balance below zero.
type UserRepository interface {
	EnsureUser(ctx context.Context, id string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	AddCredits(ctx context.Context, id string, amount int) (*domain.User, error)
	DeductCredit(ctx context.Context, id string) (*domain.User, error)
}

// SurveyMailer delivers a survey to its recipients.
type SurveyMailer interface {
	SendSurvey(ctx context.Context, survey *domain.Survey) error
}

// SurveyQueryService describes survey read use-cases.
type SurveyQueryService interface {
	List(ctx context.Context, userID string) ([]domain.Survey, error)
}

// SurveyCommandService handles the create-and-send use-case.
type SurveyCommandService interface {
	Send(ctx context.Context, cmd SendSurveyCommand) (*domain.Survey, *domain.User, error)
}

// SendSurveyCommand captures the survey form input. Recipients is the raw
// comma-separated email list exactly as submitted.
type SendSurveyCommand struct {
	UserID     string
	Title      string
	Subject    string
	Body       string
	Recipients string
}
