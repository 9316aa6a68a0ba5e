package webhook

import (
	"net/url"
	"strings"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// Event is one record of the notification provider's click-event feed. Only
// the email and URL are consumed; everything else in the payload is ignored.
type Event struct {
	Email string `json:"email"`
	URL   string `json:"url"`
	Event string `json:"event"`
}

// Candidate is a normalized, not-yet-applied survey response derived from a
// single event whose URL matched the tracked response-link template.
type Candidate struct {
	Email    string
	SurveyID string
	Choice   string
}

// Normalize filters a raw event batch down to response candidates. Events
// without a URL, with an unparsable URL, or whose path does not match
// /api/surveys/{surveyID}/{choice} produce no candidate. The template is
// fixed, not configurable.
func Normalize(events []Event) []Candidate {
	candidates := make([]Candidate, 0, len(events))
	for _, event := range events {
		if candidate, ok := normalizeEvent(event); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func normalizeEvent(event Event) (Candidate, bool) {
	email := strings.TrimSpace(event.Email)
	raw := strings.TrimSpace(event.URL)
	if email == "" || raw == "" {
		return Candidate{}, false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Candidate{}, false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) != 4 || segments[0] != "api" || segments[1] != "surveys" {
		return Candidate{}, false
	}

	surveyID, choice := segments[2], segments[3]
	if surveyID == "" || !domain.ValidChoice(choice) {
		return Candidate{}, false
	}

	return Candidate{Email: email, SurveyID: surveyID, Choice: choice}, true
}

// Dedupe removes candidates sharing the same (email, surveyID) pair. The
// first-seen candidate wins, so a recipient double-clicking or the provider
// redelivering cannot increment a counter twice; the counter update in the
// store is not idempotent, which is why this happens before Apply.
func Dedupe(candidates []Candidate) []Candidate {
	type pair struct {
		email    string
		surveyID string
	}

	seen := make(map[pair]struct{}, len(candidates))
	unique := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		key := pair{email: candidate.Email, surveyID: candidate.SurveyID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, candidate)
	}
	return unique
}
