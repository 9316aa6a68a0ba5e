package public

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/feedforward-app/feedforward-services/api/internal/billing"
	"github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/common"
)

func (h *Handler) stripeTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "missing authenticated user"})
			return
		}

		var req stripeTokenRequest
		body := io.LimitReader(r.Body, common.MaxSurveyRequestBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
			return
		}

		updatedUser, err := h.billing.PurchaseCredits(r.Context(), user.ID, req.ID)
		if errors.Is(err, billing.ErrCardToken) {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "card token is required"})
			return
		}
		if err != nil {
			h.logger.Printf("credit purchase failed: user=%s: %v", user.ID, err)
			common.WriteJSON(h.logger, w, http.StatusUnprocessableEntity, map[string]string{"error": "payment could not be processed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, mapUserResponse(updatedUser))
	}
}
