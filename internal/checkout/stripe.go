package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeLogger defines the logging contract for Stripe provider operations.
type StripeLogger func(ctx context.Context, event string, fields map[string]any)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey   string
	Backends *stripe.Backends
	Logger   StripeLogger
	Clock    func() time.Time
	Sessions stripeSessionAPI
}

// StripeProvider implements Provider using Stripe Checkout sessions.
type StripeProvider struct {
	sessions stripeSessionAPI
	clock    func() time.Time
	logger   StripeLogger
}

// NewStripeProvider constructs a Stripe-backed Provider.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Sessions == nil {
		return nil, errors.New("stripe: api key is required")
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sc := client.New(apiKey, cfg.Backends)
		sessions = sc.CheckoutSessions
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &StripeProvider{
		sessions: sessions,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// CreateOrder creates a Stripe Checkout session describing the cart.
func (p *StripeProvider) CreateOrder(ctx context.Context, order Order) (OrderSession, error) {
	if p == nil {
		return OrderSession{}, errors.New("stripe: provider is nil")
	}
	if err := validateOrder(order); err != nil {
		return OrderSession{}, err
	}

	currency := strings.ToLower(strings.TrimSpace(order.Currency))
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(order.SuccessURL),
		CancelURL:  stripe.String(order.CancelURL),
	}
	params.Context = ctx
	params.SetIdempotencyKey(ensureIdempotencyKey(order.IdempotencyKey))

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Lines))
	for _, line := range order.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
		})
	}
	params.LineItems = lineItems

	session, err := p.sessions.New(params)
	if err != nil {
		return OrderSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	p.logger(ctx, "checkout.stripe.session.created", map[string]any{
		"sessionId": session.ID,
		"currency":  session.Currency,
		"amount":    session.AmountTotal,
	})

	expiresAt := p.clock().Add(30 * time.Minute)
	if session.ExpiresAt != 0 {
		expiresAt = time.Unix(session.ExpiresAt, 0).UTC()
	}

	return OrderSession{
		OrderID:   session.ID,
		URL:       session.URL,
		Status:    string(session.Status),
		Amount:    session.AmountTotal,
		Currency:  strings.ToUpper(string(session.Currency)),
		ExpiresAt: expiresAt,
	}, nil
}

// CaptureOrder resolves the session's payment outcome. Captured is true only
// when Stripe reports the session paid.
func (p *StripeProvider) CaptureOrder(ctx context.Context, orderID string) (Capture, error) {
	if p == nil {
		return Capture{}, errors.New("stripe: provider is nil")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Capture{}, ErrMissingOrderID
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := p.sessions.Get(orderID, params)
	if err != nil {
		return Capture{}, fmt.Errorf("stripe: get checkout session: %w", err)
	}

	captured := session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	p.logger(ctx, "checkout.stripe.session.captured", map[string]any{
		"sessionId": session.ID,
		"status":    session.PaymentStatus,
		"captured":  captured,
	})

	return Capture{
		OrderID:  session.ID,
		Status:   string(session.PaymentStatus),
		Captured: captured,
	}, nil
}
