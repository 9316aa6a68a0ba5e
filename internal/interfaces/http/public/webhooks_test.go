package public

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookAcknowledgesAndApplies(t *testing.T) {
	env := newTestEnv(t)

	body := `[
		{"email":"a@example.com","url":"https://feedforward.app/api/surveys/s-1/yes","event":"click"},
		{"email":"a@example.com","url":"https://feedforward.app/api/surveys/s-1/yes","event":"click"},
		{"email":"a@example.com","url":"https://feedforward.app/unsubscribe","event":"click"}
	]`
	rec := env.do(http.MethodPost, "/api/surveys/webhooks", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	// The batch is reconciled after the response is written; the duplicate
	// and the unsubscribe click must never produce a second update.
	require.Eventually(t, func() bool {
		return len(env.store.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"s-1|a@example.com|yes"}, env.store.snapshot())
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/surveys/webhooks", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.snapshot())
}

func TestWebhookEmptyBatch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/surveys/webhooks", `[]`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
