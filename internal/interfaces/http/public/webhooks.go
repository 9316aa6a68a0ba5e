package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/common"
	"github.com/feedforward-app/feedforward-services/api/internal/webhook"
)

// surveyWebhookHandler accepts a click-event batch from the notification
// provider and acknowledges immediately. The reconciler runs after the
// response is written: the provider does not act on our answer, so store
// failures are an observability concern, never a wire concern. The payload's
// origin is not verified; that gap is documented and owned by the system
// owner, not patched here.
func (h *Handler) surveyWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var events []webhook.Event
		body := io.LimitReader(r.Body, common.MaxWebhookRequestBody)
		if err := json.NewDecoder(body).Decode(&events); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.webhookTimeout)
			defer cancel()
			if err := h.reconciler.Process(ctx, events); err != nil && h.logger != nil {
				h.logger.Printf("webhook batch reconciliation: %v", err)
			}
		}()

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{})
	}
}
