package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// FakeProvider is an in-memory Provider for tests and local development.
// It records created orders and captures them on demand.
type FakeProvider struct {
	mu     sync.Mutex
	orders map[string]Order

	// CreateErr / CaptureErr force failures when set.
	CreateErr  error
	CaptureErr error
	// Declined marks captures as unpaid without erroring.
	Declined bool

	newID func() string
	now   func() time.Time
}

// NewFakeProvider constructs a FakeProvider with ULID order ids.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		orders: map[string]Order{},
		newID:  func() string { return "ord_" + ulid.Make().String() },
		now:    time.Now,
	}
}

// CreateOrder records the order and returns a session pointing at a fake URL.
func (f *FakeProvider) CreateOrder(ctx context.Context, order Order) (OrderSession, error) {
	if f.CreateErr != nil {
		return OrderSession{}, f.CreateErr
	}
	if err := validateOrder(order); err != nil {
		return OrderSession{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.orders[id] = order

	currency := order.Currency
	if currency == "" {
		currency = "USD"
	}
	return OrderSession{
		OrderID:   id,
		URL:       "https://pay.example.com/checkout/" + id,
		Status:    "open",
		Amount:    order.Total,
		Currency:  currency,
		ExpiresAt: f.now().UTC().Add(15 * time.Minute),
	}, nil
}

// CaptureOrder resolves a recorded order as paid unless Declined is set.
func (f *FakeProvider) CaptureOrder(ctx context.Context, orderID string) (Capture, error) {
	if f.CaptureErr != nil {
		return Capture{}, f.CaptureErr
	}
	if orderID == "" {
		return Capture{}, ErrMissingOrderID
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return Capture{OrderID: orderID, Status: "unknown"}, nil
	}
	if f.Declined {
		return Capture{OrderID: orderID, Status: "unpaid"}, nil
	}
	return Capture{OrderID: orderID, Status: "paid", Captured: true}, nil
}

// Orders returns a copy of the recorded orders keyed by id.
func (f *FakeProvider) Orders() map[string]Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Order, len(f.orders))
	for k, v := range f.orders {
		out[k] = v
	}
	return out
}
