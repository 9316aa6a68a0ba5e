package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeCharger implements Charger against the Stripe charges API. The API
// client is held on the value rather than configured through the package
// global, so tests and alternate environments can swap it.
type StripeCharger struct {
	api *client.API
}

// NewStripeCharger builds a charger from a secret key.
func NewStripeCharger(secretKey string) *StripeCharger {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCharger{api: api}
}

// Charge confirms the checkout token for the fixed credit price.
func (c *StripeCharger) Charge(ctx context.Context, token, idempotencyKey string) error {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(ChargeAmountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(ChargeDescription),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}
	if err := params.SetSource(token); err != nil {
		return fmt.Errorf("set charge source: %w", err)
	}

	if _, err := c.api.Charges.New(params); err != nil {
		return fmt.Errorf("stripe charge: %w", err)
	}
	return nil
}
