package public

import (
	"time"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// surveyCreateRequest is the survey form payload. Recipients arrive as one
// comma-separated string, exactly as typed into the form field.
type surveyCreateRequest struct {
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Recipients string `json:"recipients"`
}

type stripeTokenRequest struct {
	ID string `json:"id"`
}

type userResponse struct {
	ID      string `json:"id"`
	Credits int    `json:"credits"`
}

type surveyResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body"`
	DateSent        time.Time  `json:"dateSent"`
	YesCount        int        `json:"yesCount"`
	NoCount         int        `json:"noCount"`
	LastRespondedAt *time.Time `json:"lastRespondedAt,omitempty"`
}

func mapUserResponse(user *domain.User) userResponse {
	return userResponse{ID: user.ID, Credits: user.Credits}
}

func mapSurveyResponse(survey domain.Survey) surveyResponse {
	return surveyResponse{
		ID:              survey.ID,
		Title:           survey.Title,
		Subject:         survey.Subject,
		Body:            survey.Body,
		DateSent:        survey.DateSent,
		YesCount:        survey.YesCount,
		NoCount:         survey.NoCount,
		LastRespondedAt: survey.LastRespondedAt,
	}
}
