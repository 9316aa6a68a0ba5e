package application

import (
	"context"
	"sort"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// surveyQueryService implements SurveyQueryService.
type surveyQueryService struct {
	repo SurveyRepository
}

// NewSurveyQueryService creates a new SurveyQueryService.
func NewSurveyQueryService(repo SurveyRepository) SurveyQueryService {
	return &surveyQueryService{repo: repo}
}

// List returns the caller's surveys, newest send first. The repository
// already excludes the recipient lists, which can run to thousands of
// entries per survey.
func (s *surveyQueryService) List(ctx context.Context, userID string) ([]domain.Survey, error) {
	surveys, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(surveys, func(i, j int) bool {
		return surveys[i].DateSent.After(surveys[j].DateSent)
	})
	return surveys, nil
}
