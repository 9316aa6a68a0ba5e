package public

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/feedforward-app/feedforward-services/api/internal/billing"
	"github.com/feedforward-app/feedforward-services/api/internal/survey/application"
	"github.com/feedforward-app/feedforward-services/api/internal/webhook"
)

// Handler wires the public HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	surveyQueries  application.SurveyQueryService
	surveyCommands application.SurveyCommandService
	users          application.UserRepository
	billing        *billing.Service
	reconciler     *webhook.Reconciler
	webhookTimeout time.Duration
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	SurveyQueries  application.SurveyQueryService
	SurveyCommands application.SurveyCommandService
	Users          application.UserRepository
	Billing        *billing.Service
	Reconciler     *webhook.Reconciler
	WebhookTimeout time.Duration
}

// NewHandler constructs the public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		logger:         cfg.Logger,
		surveyQueries:  cfg.SurveyQueries,
		surveyCommands: cfg.SurveyCommands,
		users:          cfg.Users,
		billing:        cfg.Billing,
		reconciler:     cfg.Reconciler,
		webhookTimeout: timeout,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/api/surveys/webhooks", h.surveyWebhookHandler())
	r.Get("/api/surveys/{surveyID}/{choice}", h.surveyThanksHandler())
	r.With(authMiddleware).Get("/api/surveys", h.surveyListHandler())
	r.With(authMiddleware, h.requireCredits).Post("/api/surveys", h.surveyCreateHandler())
	r.With(authMiddleware).Post("/api/stripe-token", h.stripeTokenHandler())
	r.With(authMiddleware).Get("/api/current-user", h.currentUserHandler())
}
