package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"steeleworks.org/atelier-web/internal/cart"
	"steeleworks.org/atelier-web/internal/checkout"
	mw "steeleworks.org/atelier-web/internal/middleware"
	"steeleworks.org/atelier-web/internal/observability"
)

// CartHandler renders the cart page.
func (a *app) CartHandler(w http.ResponseWriter, r *http.Request) {
	notice := ""
	switch r.URL.Query().Get("notice") {
	case "declined":
		notice = "The payment was not completed. Your cart is unchanged."
	case "unavailable":
		notice = "Checkout is temporarily unavailable. Please try again shortly."
	case "stock":
		notice = "Some items exceed the available stock. Adjust quantities and try again."
	}

	vm := a.basePageData(r, "Cart")
	vm.SEO.Robots = "noindex"
	vm.Cart = a.buildCartView(r, notice)
	renderPage(w, r, "cart", vm)
}

// CartBadgeFrag renders the header badge with the current item count.
func (a *app) CartBadgeFrag(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "frag_cart_badge", map[string]any{
		"Count": mw.GetSession(r).CartView().Count(),
	})
}

// CartAddHandler adds one unit of a product (plus optional variant) to the
// cart. Repeated adds of the same product+variant merge into one line.
func (a *app) CartAddHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	variant := strings.TrimSpace(r.FormValue("variant"))
	if title == "" {
		mw.WriteError(w, r, http.StatusBadRequest, "missing product title")
		return
	}

	p, ok, err := a.catalog.FindProduct(title)
	if err != nil {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	if !ok {
		mw.WriteError(w, r, http.StatusNotFound, "unknown product")
		return
	}

	sd := mw.GetSession(r)
	c := sd.CartView()
	if _, err := c.Add(p, variant); err != nil {
		switch {
		case errors.Is(err, cart.ErrOutOfStock):
			mw.WriteError(w, r, http.StatusConflict, "requested quantity exceeds available stock")
		case errors.Is(err, cart.ErrUnavailable):
			mw.WriteError(w, r, http.StatusConflict, "product is unavailable")
		default:
			mw.WriteError(w, r, http.StatusInternalServerError, "could not add to cart")
		}
		return
	}
	sd.SaveCart(c)

	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Trigger", "cart:changed")
		renderTemplate(w, r, "frag_cart_badge", map[string]any{"Count": c.Count()})
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CartRemoveHandler deletes one line. Unknown ids are a no-op.
func (a *app) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	c := sd.CartView()
	c.Remove(chi.URLParam(r, "id"))
	sd.SaveCart(c)
	a.respondCart(w, r, "")
}

// CartQuantityHandler adjusts a line's quantity by the signed form delta.
// Decrements floor at one; increments are refused past the stock ceiling.
func (a *app) CartQuantityHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	delta, err := strconv.Atoi(strings.TrimPrefix(r.FormValue("delta"), "+"))
	if err != nil || delta == 0 {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid quantity delta")
		return
	}

	sd := mw.GetSession(r)
	c := sd.CartView()
	notice := ""
	if err := c.UpdateQuantity(chi.URLParam(r, "id"), delta); err != nil {
		if !errors.Is(err, cart.ErrOutOfStock) {
			mw.WriteError(w, r, http.StatusInternalServerError, "could not update quantity")
			return
		}
		notice = "Only limited stock remains for this item."
	}
	sd.SaveCart(c)
	a.respondCart(w, r, notice)
}

// CartClearHandler empties the cart.
func (a *app) CartClearHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	c := sd.CartView()
	c.Clear()
	sd.SaveCart(c)
	a.respondCart(w, r, "")
}

func (a *app) respondCart(w http.ResponseWriter, r *http.Request, notice string) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Trigger", "cart:changed")
		renderTemplate(w, r, "frag_cart_table", a.buildCartView(r, notice))
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CheckoutHandler re-validates the cart against the current catalog, creates
// a provider order, and redirects the shopper to the provider's page.
func (a *app) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	log := observability.FromContext(r.Context())
	sd := mw.GetSession(r)
	c := sd.CartView()
	if c.Len() == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	order, err := a.orderFromCart(c)
	if err != nil {
		if errors.Is(err, cart.ErrOutOfStock) || errors.Is(err, cart.ErrUnavailable) {
			http.Redirect(w, r, "/cart?notice=stock", http.StatusSeeOther)
			return
		}
		log.Error("checkout order build", zap.Error(err))
		http.Redirect(w, r, "/cart?notice=unavailable", http.StatusSeeOther)
		return
	}

	session, err := a.payments.CreateOrder(r.Context(), order)
	if err != nil {
		log.Error("checkout create order", zap.Error(err))
		http.Redirect(w, r, "/cart?notice=unavailable", http.StatusSeeOther)
		return
	}

	sd.OrderID = session.OrderID
	sd.MarkDirty()
	log.Info("checkout started",
		zap.String("order_id", session.OrderID),
		zap.Int64("amount", session.Amount),
		zap.String("currency", session.Currency),
	)
	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}

// CheckoutConfirmHandler captures the pending order. A captured payment
// clears the cart; anything else leaves it intact.
func (a *app) CheckoutConfirmHandler(w http.ResponseWriter, r *http.Request) {
	log := observability.FromContext(r.Context())
	sd := mw.GetSession(r)
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		orderID = sd.OrderID
	}
	if orderID == "" {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	capture, err := a.payments.CaptureOrder(r.Context(), orderID)
	if err != nil {
		log.Error("checkout capture", zap.Error(err))
		http.Redirect(w, r, "/cart?notice=unavailable", http.StatusSeeOther)
		return
	}
	if !capture.Captured {
		log.Info("checkout not captured", zap.String("order_id", orderID), zap.String("status", capture.Status))
		http.Redirect(w, r, "/cart?notice=declined", http.StatusSeeOther)
		return
	}

	view := a.buildCartView(r, "")
	c := sd.CartView()
	c.Clear()
	sd.SaveCart(c)
	sd.OrderID = ""
	sd.MarkDirty()

	log.Info("checkout captured", zap.String("order_id", orderID))
	vm := a.basePageData(r, "Order confirmed")
	vm.SEO.Robots = "noindex"
	vm.CartCount = 0
	vm.Order = map[string]any{
		"OrderID": capture.OrderID,
		"Lines":   view.Lines,
		"Total":   view.Total,
	}
	renderPage(w, r, "order", vm)
}

// orderFromCart maps cart lines to provider lines, rejecting the order when
// any product has since gone unavailable or under-stocked.
func (a *app) orderFromCart(c *cart.Cart) (checkout.Order, error) {
	var order checkout.Order
	for _, it := range c.Items() {
		p, ok, err := a.catalog.FindProduct(baseTitle(it))
		if err != nil {
			return checkout.Order{}, err
		}
		if ok {
			if !p.Available() {
				return checkout.Order{}, cart.ErrUnavailable
			}
			if limit := p.StockLimit(); limit >= 0 && it.Quantity > limit {
				return checkout.Order{}, cart.ErrOutOfStock
			}
		}
		order.Lines = append(order.Lines, checkout.Line{
			Name:       it.Title,
			UnitAmount: it.Price,
			Quantity:   int64(it.Quantity),
		})
		order.Total += it.Subtotal()
	}
	order.Currency = a.cfg.Checkout.Currency
	order.SuccessURL = a.absoluteURL(a.cfg.Checkout.SuccessURL)
	order.CancelURL = a.absoluteURL(a.cfg.Checkout.CancelURL)
	order.IdempotencyKey = checkout.NewIdempotencyKey()
	return order, nil
}
