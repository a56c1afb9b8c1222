// Package cart maintains the shopper's selected line items. The cart is an
// encapsulated state object: the backing list is never exposed, and every
// mutation leaves the cart in a state ready to be persisted and re-rendered
// by the caller.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"steeleworks.org/atelier-web/internal/catalog"
)

// ErrOutOfStock is returned when an add would exceed the product's declared stock.
var ErrOutOfStock = errors.New("cart: requested quantity exceeds available stock")

// ErrUnavailable is returned when the product cannot be purchased at all.
var ErrUnavailable = errors.New("cart: product is unavailable")

// Item is one distinct product+variant entry with a quantity. Price is
// captured at add time in minor units; later catalog changes do not
// retroactively update it.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
	Variant     string `json:"variant,omitempty"`
	Fulfillment string `json:"fulfillment,omitempty"`
	// StockLimit mirrors the product's declared stock at add time; -1 when untracked.
	StockLimit int `json:"stockLimit"`
}

// Subtotal is the line's price times quantity.
func (it Item) Subtotal() int64 {
	return it.Price * int64(it.Quantity)
}

// Cart is the in-memory line item list for one browser session.
type Cart struct {
	items []Item
}

// New constructs an empty cart.
func New() *Cart {
	return &Cart{}
}

// FromItems constructs a cart from previously persisted lines, dropping
// entries that fail basic validity (the persisted copy is best-effort, not
// authoritative).
func FromItems(items []Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 || it.Price < 0 {
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

// LineID derives the deterministic primary key for a product+variant pair.
// Items sharing a title and variant merge rather than duplicate.
func LineID(title, variant string) string {
	id := slugify(title)
	if v := slugify(variant); v != "" {
		id += "--" + v
	}
	return id
}

// DisplayTitle echoes the product title with the variant appended when present.
func DisplayTitle(title, variant string) string {
	title = strings.TrimSpace(title)
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, variant)
}

// Add inserts a new line for the product+variant or increments the existing
// one. The add is rejected when the product is unavailable or when the
// resulting quantity would exceed its declared stock. It returns the line as
// stored.
func (c *Cart) Add(p catalog.Product, variant string) (Item, error) {
	if !p.Available() {
		return Item{}, ErrUnavailable
	}
	id := LineID(p.Title, variant)
	limit := p.StockLimit()

	if idx := c.indexOf(id); idx >= 0 {
		next := c.items[idx].Quantity + 1
		if limit >= 0 && next > limit {
			return c.items[idx], ErrOutOfStock
		}
		c.items[idx].Quantity = next
		return c.items[idx], nil
	}

	item := Item{
		ID:          id,
		Title:       DisplayTitle(p.Title, variant),
		Price:       p.PriceCents(),
		Image:       p.Image,
		Quantity:    1,
		Variant:     strings.TrimSpace(variant),
		Fulfillment: p.Fulfillment,
		StockLimit:  limit,
	}
	c.items = append(c.items, item)
	return item, nil
}

// Remove deletes the line with the given id. Absent ids are a no-op.
func (c *Cart) Remove(id string) {
	idx := c.indexOf(id)
	if idx < 0 {
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
}

// UpdateQuantity adjusts a line's quantity by delta, floor-clamped to 1.
// Driving a line to zero requires an explicit Remove. Increments respect the
// stock limit captured at add time.
func (c *Cart) UpdateQuantity(id string, delta int) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return nil
	}
	next := c.items[idx].Quantity + delta
	if next < 1 {
		next = 1
	}
	if limit := c.items[idx].StockLimit; limit >= 0 && next > limit {
		return ErrOutOfStock
	}
	c.items[idx].Quantity = next
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Total is the sum of price*quantity over all lines, in minor units.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Count is the sum of quantities over all lines.
func (c *Cart) Count() int {
	var count int
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the line list in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the line with the given id.
func (c *Cart) Find(id string) (Item, bool) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	return Item{}, false
}

func (c *Cart) indexOf(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// slugify lowercases and collapses non-alphanumerics into single hyphens.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
