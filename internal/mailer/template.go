package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// surveyEmailTemplate renders the question with one tracked link per answer.
// The link paths must match the webhook reconciler's fixed response-link
// template, survey ID first, then the choice literal.
var surveyEmailTemplate = template.Must(template.New("survey").Parse(`<html>
  <body>
    <div style="text-align: center;">
      <h3>I'd like your input!</h3>
      <p>Please answer the following question:</p>
      <p>{{.Body}}</p>
      <div>
        <a href="{{.RedirectDomain}}/api/surveys/{{.SurveyID}}/yes">Yes</a>
      </div>
      <div>
        <a href="{{.RedirectDomain}}/api/surveys/{{.SurveyID}}/no">No</a>
      </div>
    </div>
  </body>
</html>`))

type surveyEmailData struct {
	Body           string
	SurveyID       string
	RedirectDomain string
}

// RenderSurveyEmail produces the HTML body for a survey send.
func RenderSurveyEmail(survey *domain.Survey, redirectDomain string) (string, error) {
	data := surveyEmailData{
		Body:           survey.Body,
		SurveyID:       survey.ID,
		RedirectDomain: strings.TrimRight(redirectDomain, "/"),
	}

	var builder strings.Builder
	if err := surveyEmailTemplate.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("render survey email: %w", err)
	}
	return builder.String(), nil
}
