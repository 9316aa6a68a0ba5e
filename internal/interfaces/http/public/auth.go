package public

import (
	"net/http"

	"github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/common"
)

func (h *Handler) currentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "missing authenticated user"})
			return
		}

		record, err := h.users.FindByID(r.Context(), user.ID)
		if err != nil {
			h.logger.Printf("failed to load user: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"user":    user,
			"credits": record.Credits,
		})
	}
}

// requireCredits guards the survey send behind a positive credit balance.
// It runs after the auth middleware, so the context user always exists. The
// balance is re-checked atomically at deduct time; this guard only produces
// a friendlier error before the email goes out.
func (h *Handler) requireCredits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "you need to log in first"})
			return
		}

		record, err := h.users.FindByID(r.Context(), user.ID)
		if err != nil {
			h.logger.Printf("failed to load user for credit check: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
			return
		}
		if record.Credits < 1 {
			common.WriteJSON(h.logger, w, http.StatusForbidden, map[string]string{"error": "not enough credits"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
