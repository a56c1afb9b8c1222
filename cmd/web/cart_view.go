package main

import (
	"net/http"
	"strings"

	"steeleworks.org/atelier-web/internal/cart"
	mw "steeleworks.org/atelier-web/internal/middleware"
)

// CartLine is one rendered cart row.
type CartLine struct {
	cart.Item
	LowStock bool
}

// CartViewModel is the cart page and table fragment payload.
type CartViewModel struct {
	Lines  []CartLine
	Total  int64
	Count  int
	Empty  bool
	Notice string
	// PaymentLink is the external fallback when no provider is configured.
	PaymentLink string
}

// buildCartView projects the session cart into the render shape.
func (a *app) buildCartView(r *http.Request, notice string) CartViewModel {
	c := mw.GetSession(r).CartView()
	view := CartViewModel{
		Total:       c.Total(),
		Count:       c.Count(),
		Empty:       c.Len() == 0,
		Notice:      notice,
		PaymentLink: a.cfg.Checkout.PaymentLink,
	}
	for _, it := range c.Items() {
		view.Lines = append(view.Lines, CartLine{
			Item:     it,
			LowStock: it.StockLimit >= 0 && it.StockLimit <= 3,
		})
	}
	return view
}

// baseTitle strips the variant suffix DisplayTitle appends, recovering the
// catalog title for stock re-checks.
func baseTitle(it cart.Item) string {
	if it.Variant == "" {
		return it.Title
	}
	return strings.TrimSuffix(it.Title, " ("+it.Variant+")")
}
