package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// SendGridMailer delivers surveys through the SendGrid v3 mail API with
// click tracking enabled, so every answered link comes back on the event
// webhook feed.
type SendGridMailer struct {
	client         *sendgrid.Client
	fromEmail      string
	redirectDomain string
	logger         *log.Logger
}

// NewSendGridMailer builds a mailer bound to one API key and sender address.
func NewSendGridMailer(apiKey, fromEmail, redirectDomain string, logger *log.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:         sendgrid.NewSendClient(apiKey),
		fromEmail:      fromEmail,
		redirectDomain: strings.TrimRight(redirectDomain, "/"),
		logger:         logger,
	}
}

// SendSurvey emails the survey question to every recipient in one send.
func (m *SendGridMailer) SendSurvey(ctx context.Context, survey *domain.Survey) error {
	html, err := RenderSurveyEmail(survey, m.redirectDomain)
	if err != nil {
		return err
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("FeedForward", m.fromEmail))
	message.Subject = survey.Subject
	message.AddContent(mail.NewContent("text/html", html))

	personalization := mail.NewPersonalization()
	for _, recipient := range survey.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient.Email))
	}
	message.AddPersonalizations(personalization)

	clickTracking := mail.NewClickTrackingSetting()
	clickTracking.SetEnable(true)
	clickTracking.SetEnableText(true)
	trackingSettings := mail.NewTrackingSettings()
	trackingSettings.SetClickTracking(clickTracking)
	message.SetTrackingSettings(trackingSettings)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected send: status=%d body=%s", response.StatusCode, strings.TrimSpace(response.Body))
	}

	if m.logger != nil {
		m.logger.Printf("survey %s sent to %d recipients", survey.ID, len(survey.Recipients))
	}
	return nil
}
