package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/feedforward-app/feedforward-services/api/internal/billing"
	"github.com/feedforward-app/feedforward-services/api/internal/config"
	mongodoc "github.com/feedforward-app/feedforward-services/api/internal/infrastructure/mongo"
	commonhttp "github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/common"
	publichttp "github.com/feedforward-app/feedforward-services/api/internal/interfaces/http/public"
	"github.com/feedforward-app/feedforward-services/api/internal/mailer"
	"github.com/feedforward-app/feedforward-services/api/internal/metrics"
	"github.com/feedforward-app/feedforward-services/api/internal/survey/application"
	"github.com/feedforward-app/feedforward-services/api/internal/webhook"
)

// Server owns the HTTP lifecycle and acts as the composition root: it builds
// the repositories, services and handlers and connects them to the router.
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	database       *mongo.Database
	users          *mongodoc.UserRepository
	surveyQueries  application.SurveyQueryService
	surveyCommands application.SurveyCommandService
	billingService *billing.Service
	reconciler     *webhook.Reconciler
	jwtConfigs     []config.JWTConfig
	jwtAudience    string
	webhookTimeout time.Duration
	addr           string
	allowedOrigins []string
}

type authenticatedUser = commonhttp.AuthenticatedUser

// New assembles the application from Config and a connected Mongo client.
func New(cfg config.Config, client *mongo.Client) *Server {
	database := client.Database(cfg.MongoDatabase)

	surveyRepo := mongodoc.NewSurveyRepository(database, cfg.SurveyCollection)
	userRepo := mongodoc.NewUserRepository(database, cfg.UserCollection)
	failureRepo := mongodoc.NewWebhookFailureRepository(database, cfg.WebhookFailureCollection, cfg.ServerLog)

	surveyMailer := mailer.NewSendGridMailer(cfg.SendGridKey, cfg.SendGridFrom, cfg.RedirectDomain, cfg.ServerLog)
	charger := billing.NewStripeCharger(cfg.StripeSecretKey)

	return &Server{
		logger:         cfg.ServerLog,
		client:         client,
		database:       database,
		users:          userRepo,
		surveyQueries:  application.NewSurveyQueryService(surveyRepo),
		surveyCommands: application.NewSurveyCommandService(surveyRepo, userRepo, surveyMailer),
		billingService: billing.NewService(charger, userRepo, cfg.ServerLog),
		reconciler:     webhook.NewReconciler(surveyRepo, failureRepo, cfg.ServerLog),
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		webhookTimeout: cfg.WebhookTimeout,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}
}

// Run starts the HTTP server and blocks until shutdown. Infrastructure
// assembly only; domain logic stays out of this layer.
func (s *Server) Run() error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withMetrics)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Handle("/metrics", promhttp.Handler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		SurveyQueries:  s.surveyQueries,
		SurveyCommands: s.surveyCommands,
		Users:          s.users,
		Billing:        s.billingService,
		Reconciler:     s.reconciler,
		WebhookTimeout: s.webhookTimeout,
	})
	publicHandler.Register(router, s.authMiddleware)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// withMetrics records request counts and latencies for every route.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		metrics.RequestCount.WithLabelValues(path, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// withCORS grants the configured origins access to the API.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler reports Mongo reachability for monitoring; it reflects
// infrastructure state only, never domain state.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware validates the bearer token and loads the principal into the
// request context, upserting the user record on first contact. Session
// issuance lives in an external auth service; this server only verifies.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "you need to log in first"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "a bearer token is required"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": "access token is empty"})
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		user := authenticatedUser{
			ID:      claims.Subject,
			Name:    claims.Name,
			Email:   claims.Email,
			Picture: claims.Picture,
		}

		if _, err := s.users.EnsureUser(r.Context(), user.ID); err != nil {
			s.logger.Printf("failed to upsert user %s: %v", user.ID, err)
			commonhttp.WriteJSON(s.logger, w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
			return
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAuthToken tries each configured JWT secret in turn, checking the
// signature and the issuer/audience pairing. No config matching means the
// token is rejected.
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, fmt.Errorf("authentication is not configured")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}

		now := time.Now()
		if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
			continue
		}
		if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, fmt.Errorf("access token is invalid")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// shutdown disconnects the Mongo client with a timeout so process exit does
// not leak connections.
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("error disconnecting MongoDB: %v", err)
	}
}

// waitForShutdown watches ListenAndServe and OS signals to drive a graceful
// stop, keeping the OS-level concerns out of the rest of the application.
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("server exited abnormally: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("received signal %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("error during server shutdown: %v", err)
		}
	}

	srv.shutdown(context.Background())
}
