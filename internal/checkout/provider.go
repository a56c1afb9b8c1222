// Package checkout abstracts the external payment provider behind a narrow
// capability interface so the handoff can be exercised with a fake. The site
// never processes payments itself; it only creates an order description and
// awaits the provider's capture outcome.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrEmptyOrder is returned when an order carries no lines.
var ErrEmptyOrder = errors.New("checkout: order has no lines")

// ErrMissingOrderID is returned when no order identifier is provided.
var ErrMissingOrderID = errors.New("checkout: missing order id")

// Line maps one cart line into the provider's order format.
type Line struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// Order describes the purchase handed to the provider.
type Order struct {
	Lines          []Line
	Total          int64
	Currency       string
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// OrderSession is the provider's handle for an initiated checkout.
type OrderSession struct {
	OrderID   string
	URL       string
	Status    string
	Amount    int64
	Currency  string
	ExpiresAt time.Time
}

// Capture reports the outcome of the provider's capture step.
type Capture struct {
	OrderID  string
	Status   string
	Captured bool
}

// Provider is the capability surface the cart needs from a payment provider.
type Provider interface {
	CreateOrder(ctx context.Context, order Order) (OrderSession, error)
	CaptureOrder(ctx context.Context, orderID string) (Capture, error)
}

// NewIdempotencyKey returns a fresh key for provider calls.
func NewIdempotencyKey() string {
	return "pay_" + ulid.Make().String()
}

func ensureIdempotencyKey(key string) string {
	key = strings.TrimSpace(key)
	if key != "" {
		return key
	}
	return NewIdempotencyKey()
}

func validateOrder(order Order) error {
	if len(order.Lines) == 0 {
		return ErrEmptyOrder
	}
	var total int64
	for _, line := range order.Lines {
		if line.Quantity < 1 || line.UnitAmount < 0 || strings.TrimSpace(line.Name) == "" {
			return errors.New("checkout: invalid order line")
		}
		total += line.UnitAmount * line.Quantity
	}
	if order.Total != total {
		return errors.New("checkout: order total does not match lines")
	}
	return nil
}
