package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/application"
	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

// One purchase charges five dollars for five survey sends.
const (
	CreditsPerPurchase = 5
	ChargeAmountCents  = 500
	ChargeDescription  = "$5 for 5 survey credits"
)

// ErrCardToken is returned when the checkout token is missing or empty.
var ErrCardToken = errors.New("card token is required")

// Charger executes one card charge. The idempotency key guards against
// double charges on client retries.
type Charger interface {
	Charge(ctx context.Context, token, idempotencyKey string) error
}

// Service converts successful charges into survey credits.
type Service struct {
	charger Charger
	users   application.UserRepository
	logger  *log.Logger
}

// NewService builds the billing service around an injected charger.
func NewService(charger Charger, users application.UserRepository, logger *log.Logger) *Service {
	return &Service{charger: charger, users: users, logger: logger}
}

// PurchaseCredits charges the card token and credits the account. Credits
// are added only after the charge succeeds; the updated user is returned so
// the caller can show the new balance.
func (s *Service) PurchaseCredits(ctx context.Context, userID, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrCardToken
	}

	if err := s.charger.Charge(ctx, token, uuid.NewString()); err != nil {
		return nil, fmt.Errorf("charge card: %w", err)
	}

	user, err := s.users.AddCredits(ctx, userID, CreditsPerPurchase)
	if err != nil {
		// The card was charged but the balance update failed. Loud log so an
		// operator can reconcile manually.
		if s.logger != nil {
			s.logger.Printf("charge succeeded but credits not added: user=%s: %v", userID, err)
		}
		return nil, fmt.Errorf("add credits: %w", err)
	}
	return user, nil
}
