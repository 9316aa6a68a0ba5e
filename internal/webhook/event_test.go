package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   []Candidate
	}{
		{
			name: "matching click event",
			events: []Event{
				{Email: "a@x.com", URL: "https://feedforward.app/api/surveys/s1/yes", Event: "click"},
			},
			want: []Candidate{{Email: "a@x.com", SurveyID: "s1", Choice: "yes"}},
		},
		{
			name: "query string and fragment ignored",
			events: []Event{
				{Email: "a@x.com", URL: "https://feedforward.app/api/surveys/s1/no?utm=1#top", Event: "click"},
			},
			want: []Candidate{{Email: "a@x.com", SurveyID: "s1", Choice: "no"}},
		},
		{
			name: "missing url produces no candidate",
			events: []Event{
				{Email: "a@x.com", Event: "bounce"},
			},
			want: []Candidate{},
		},
		{
			name: "unrelated tracked link produces no candidate",
			events: []Event{
				{Email: "b@x.com", URL: "https://feedforward.app/api/confirm-email", Event: "click"},
			},
			want: []Candidate{},
		},
		{
			name: "unknown choice literal produces no candidate",
			events: []Event{
				{Email: "a@x.com", URL: "https://feedforward.app/api/surveys/s1/maybe", Event: "click"},
			},
			want: []Candidate{},
		},
		{
			name: "missing email produces no candidate",
			events: []Event{
				{URL: "https://feedforward.app/api/surveys/s1/yes", Event: "click"},
			},
			want: []Candidate{},
		},
		{
			name: "extra path segments produce no candidate",
			events: []Event{
				{Email: "a@x.com", URL: "https://feedforward.app/api/surveys/s1/yes/extra", Event: "click"},
			},
			want: []Candidate{},
		},
		{
			name: "mixed batch keeps only matches in order",
			events: []Event{
				{Email: "a@x.com", URL: "https://feedforward.app/api/surveys/s1/yes", Event: "click"},
				{Email: "b@x.com", Event: "open"},
				{Email: "c@x.com", URL: "https://feedforward.app/api/surveys/s2/no", Event: "click"},
			},
			want: []Candidate{
				{Email: "a@x.com", SurveyID: "s1", Choice: "yes"},
				{Email: "c@x.com", SurveyID: "s2", Choice: "no"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.events))
		})
	}
}

func TestDedupe(t *testing.T) {
	t.Run("first seen candidate wins", func(t *testing.T) {
		candidates := []Candidate{
			{Email: "a@x.com", SurveyID: "s1", Choice: "yes"},
			{Email: "a@x.com", SurveyID: "s1", Choice: "no"},
			{Email: "a@x.com", SurveyID: "s1", Choice: "yes"},
		}

		got := Dedupe(candidates)

		assert.Equal(t, []Candidate{{Email: "a@x.com", SurveyID: "s1", Choice: "yes"}}, got)
	})

	t.Run("distinct pairs survive", func(t *testing.T) {
		candidates := []Candidate{
			{Email: "a@x.com", SurveyID: "s1", Choice: "yes"},
			{Email: "b@x.com", SurveyID: "s1", Choice: "no"},
			{Email: "a@x.com", SurveyID: "s2", Choice: "no"},
		}

		got := Dedupe(candidates)

		assert.Equal(t, candidates, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Dedupe(nil))
	})
}
