package billing

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedforward-app/feedforward-services/api/internal/survey/domain"
)

type fakeCharger struct {
	tokens []string
	keys   []string
	err    error
}

func (c *fakeCharger) Charge(_ context.Context, token, idempotencyKey string) error {
	if c.err != nil {
		return c.err
	}
	c.tokens = append(c.tokens, token)
	c.keys = append(c.keys, idempotencyKey)
	return nil
}

type fakeUsers struct {
	credits int
	addErr  error
}

func (r *fakeUsers) EnsureUser(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id, Credits: r.credits}, nil
}

func (r *fakeUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id, Credits: r.credits}, nil
}

func (r *fakeUsers) AddCredits(_ context.Context, id string, amount int) (*domain.User, error) {
	if r.addErr != nil {
		return nil, r.addErr
	}
	r.credits += amount
	return &domain.User{ID: id, Credits: r.credits}, nil
}

func (r *fakeUsers) DeductCredit(_ context.Context, id string) (*domain.User, error) {
	r.credits--
	return &domain.User{ID: id, Credits: r.credits}, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPurchaseCreditsSuccess(t *testing.T) {
	charger := &fakeCharger{}
	users := &fakeUsers{credits: 1}
	service := NewService(charger, users, testLogger())

	user, err := service.PurchaseCredits(context.Background(), "user-1", "tok_visa")
	require.NoError(t, err)

	assert.Equal(t, 1+CreditsPerPurchase, user.Credits)
	require.Len(t, charger.tokens, 1)
	assert.Equal(t, "tok_visa", charger.tokens[0])
	assert.NotEmpty(t, charger.keys[0], "every charge carries an idempotency key")
}

func TestPurchaseCreditsUniqueIdempotencyKeys(t *testing.T) {
	charger := &fakeCharger{}
	service := NewService(charger, &fakeUsers{}, testLogger())

	_, err := service.PurchaseCredits(context.Background(), "user-1", "tok_visa")
	require.NoError(t, err)
	_, err = service.PurchaseCredits(context.Background(), "user-1", "tok_visa")
	require.NoError(t, err)

	require.Len(t, charger.keys, 2)
	assert.NotEqual(t, charger.keys[0], charger.keys[1])
}

func TestPurchaseCreditsMissingToken(t *testing.T) {
	charger := &fakeCharger{}
	users := &fakeUsers{credits: 1}
	service := NewService(charger, users, testLogger())

	_, err := service.PurchaseCredits(context.Background(), "user-1", "  ")

	assert.ErrorIs(t, err, ErrCardToken)
	assert.Empty(t, charger.tokens)
	assert.Equal(t, 1, users.credits)
}

func TestPurchaseCreditsChargeFailure(t *testing.T) {
	charger := &fakeCharger{err: errors.New("card declined")}
	users := &fakeUsers{credits: 1}
	service := NewService(charger, users, testLogger())

	_, err := service.PurchaseCredits(context.Background(), "user-1", "tok_visa")

	require.Error(t, err)
	assert.Equal(t, 1, users.credits, "a failed charge must not add credits")
}

func TestPurchaseCreditsAddFailureSurfaces(t *testing.T) {
	charger := &fakeCharger{}
	users := &fakeUsers{addErr: errors.New("write concern failed")}
	service := NewService(charger, users, testLogger())

	_, err := service.PurchaseCredits(context.Background(), "user-1", "tok_visa")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "add credits")
}
