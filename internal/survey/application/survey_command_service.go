package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// surveyCommandService implements SurveyCommandService.
type surveyCommandService struct {
	surveys SurveyRepository
	users   UserRepository
	mailer  SurveyMailer
}

// NewSurveyCommandService creates a new SurveyCommandService.
func NewSurveyCommandService(surveys SurveyRepository, users UserRepository, mailer SurveyMailer) SurveyCommandService {
	return &surveyCommandService{surveys: surveys, users: users, mailer: mailer}
}

// Send validates the form input, emails the recipients and persists the
// survey, then deducts one credit. The email goes out before anything is
// written: a survey that never reached its recipients must not be stored or
// charged for. The updated user is returned so the caller can show the new
// credit balance.
func (s *surveyCommandService) Send(ctx context.Context, cmd SendSurveyCommand) (*domain.Survey, *domain.User, error) {
	title := strings.TrimSpace(cmd.Title)
	subject := strings.TrimSpace(cmd.Subject)
	body := strings.TrimSpace(cmd.Body)
	if title == "" || subject == "" || body == "" {
		return nil, nil, fmt.Errorf("title, subject and body are required")
	}

	recipients, err := domain.ParseRecipients(cmd.Recipients)
	if err != nil {
		return nil, nil, err
	}

	// The ID is assigned before the send because the tracked yes/no links in
	// the email body embed it.
	survey := &domain.Survey{
		ID:         uuid.NewString(),
		UserID:     cmd.UserID,
		Title:      title,
		Subject:    subject,
		Body:       body,
		DateSent:   time.Now().UTC(),
		Recipients: recipients,
	}

	if err := s.mailer.SendSurvey(ctx, survey); err != nil {
		return nil, nil, fmt.Errorf("send survey email: %w", err)
	}

	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, nil, fmt.Errorf("store survey: %w", err)
	}

	user, err := s.users.DeductCredit(ctx, cmd.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("deduct credit: %w", err)
	}

	return survey, user, nil
}
