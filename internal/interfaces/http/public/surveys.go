package public

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/common"
	"github.com/feedforward-app/feedforward-services/api/internal/survey/application"
)

func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "missing authenticated user"})
			return
		}

		surveys, err := h.surveyQueries.List(r.Context(), user.ID)
		if err != nil {
			h.logger.Printf("failed to list surveys: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "failed to list surveys"})
			return
		}

		payload := make([]surveyResponse, 0, len(surveys))
		for _, survey := range surveys {
			payload = append(payload, mapSurveyResponse(survey))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, payload)
	}
}

func (h *Handler) surveyCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "missing authenticated user"})
			return
		}

		var req surveyCreateRequest
		body := io.LimitReader(r.Body, common.MaxSurveyRequestBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
			return
		}

		survey, updatedUser, err := h.surveyCommands.Send(r.Context(), application.SendSurveyCommand{
			UserID:     user.ID,
			Title:      req.Title,
			Subject:    req.Subject,
			Body:       req.Body,
			Recipients: req.Recipients,
		})
		if errors.Is(err, application.ErrInsufficientCredits) {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "not enough credits"})
			return
		}
		if err != nil {
			// The send pipeline failed somewhere between validation and the
			// provider; the caller's input is the usual culprit.
			h.logger.Printf("survey send failed: user=%s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]any{
			"survey": mapSurveyResponse(*survey),
			"user":   mapUserResponse(updatedUser),
		})
	}
}

// surveyThanksHandler serves the static acknowledgment page recipients land
// on after answering. The response tally itself arrives separately on the
// webhook feed, this page is presentation only.
func (h *Handler) surveyThanksHandler() http.HandlerFunc {
	const page = `<html><body><h3>Thanks for voting!</h3><p>Your response has been recorded.</p></body></html>`

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(page)); err != nil && h.logger != nil {
			h.logger.Printf("failed to write thanks page: %v", err)
		}
	}
}
