package common

const (
	// MaxSurveyRequestBody limits JSON request bodies for survey and billing
	// endpoints.
	MaxSurveyRequestBody = 1 << 20
	// MaxWebhookRequestBody limits webhook batch payloads. Provider batches
	// top out in the low hundreds of events, this leaves generous headroom.
	MaxWebhookRequestBody = 4 << 20
)
