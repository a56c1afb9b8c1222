package cart

import (
	"errors"
	"math/rand"
	"testing"

	"steeleworks.org/atelier-web/internal/catalog"
)

func intPtr(v int) *int { return &v }

func glass(stock *int) catalog.Product {
	return catalog.Product{
		Title:       "Sand-Etched Pint Glass",
		Price:       "$35",
		Image:       "/assets/products/etched-glass.jpg",
		Stock:       stock,
		Fulfillment: "ships in 1-2 weeks",
	}
}

func TestAddSameVariantMergesQuantity(t *testing.T) {
	c := New()
	first, err := c.Add(glass(nil), "16oz")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	second, err := c.Add(glass(nil), "16oz")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same line id, got %q and %q", first.ID, second.ID)
	}
	if c.Len() != 1 {
		t.Fatalf("expected a single line, got %d", c.Len())
	}
	if second.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", second.Quantity)
	}
}

func TestAddDifferentVariantsCreateSeparateLines(t *testing.T) {
	c := New()
	if _, err := c.Add(glass(nil), "16oz"); err != nil {
		t.Fatalf("add 16oz: %v", err)
	}
	if _, err := c.Add(glass(nil), "20oz"); err != nil {
		t.Fatalf("add 20oz: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", c.Len())
	}
}

func TestAddRespectsStockCeiling(t *testing.T) {
	c := New()
	if _, err := c.Add(glass(intPtr(2)), ""); err != nil {
		t.Fatalf("add 1: %v", err)
	}
	if _, err := c.Add(glass(intPtr(2)), ""); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	_, err := c.Add(glass(intPtr(2)), "")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	item, _ := c.Find(LineID("Sand-Etched Pint Glass", ""))
	if item.Quantity != 2 {
		t.Fatalf("rejected add must leave quantity unchanged, got %d", item.Quantity)
	}
}

func TestAddUnavailableProduct(t *testing.T) {
	c := New()
	_, err := c.Add(glass(intPtr(0)), "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("unavailable add must not create a line")
	}
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	c := New()
	item, err := c.Add(glass(nil), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := c.UpdateQuantity(item.ID, -1); err != nil {
			t.Fatalf("decrement %d: %v", i, err)
		}
	}
	got, _ := c.Find(item.ID)
	if got.Quantity != 1 {
		t.Fatalf("expected floor at 1, got %d", got.Quantity)
	}
	if c.Len() != 1 {
		t.Fatal("decrement must never delete the line; Remove is a separate action")
	}
}

func TestUpdateQuantityRespectsStockLimit(t *testing.T) {
	c := New()
	item, err := c.Add(glass(intPtr(2)), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.UpdateQuantity(item.ID, 1); err != nil {
		t.Fatalf("increment to limit: %v", err)
	}
	if err := c.UpdateQuantity(item.ID, 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock past limit, got %v", err)
	}
}

func TestRemoveIsNoOpForUnknownID(t *testing.T) {
	c := New()
	if _, err := c.Add(glass(nil), ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.Remove("does-not-exist")
	if c.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", c.Len())
	}
	c.Remove(LineID("Sand-Etched Pint Glass", ""))
	if c.Len() != 0 {
		t.Fatalf("expected empty cart, got %d lines", c.Len())
	}
}

func TestClearEmptiesCart(t *testing.T) {
	c := New()
	_, _ = c.Add(glass(nil), "16oz")
	_, _ = c.Add(glass(nil), "20oz")
	c.Clear()
	if c.Len() != 0 || c.Count() != 0 || c.Total() != 0 {
		t.Fatalf("clear left state: len=%d count=%d total=%d", c.Len(), c.Count(), c.Total())
	}
}

// TestTotalInvariantOverRandomOperations drives random add/remove/update
// sequences and checks the total always equals the recomputed sum.
func TestTotalInvariantOverRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []catalog.Product{
		{Title: "Glass", Price: "$35"},
		{Title: "Print", Price: "$12.50"},
		{Title: "Sticker Pack", Price: "$5"},
	}
	variants := []string{"", "small", "large"}

	c := New()
	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			p := products[rng.Intn(len(products))]
			_, _ = c.Add(p, variants[rng.Intn(len(variants))])
		case 2:
			items := c.Items()
			if len(items) > 0 {
				c.Remove(items[rng.Intn(len(items))].ID)
			}
		case 3:
			items := c.Items()
			if len(items) > 0 {
				delta := rng.Intn(3) - 1
				_ = c.UpdateQuantity(items[rng.Intn(len(items))].ID, delta)
			}
		}

		var want int64
		var count int
		for _, it := range c.Items() {
			want += it.Price * int64(it.Quantity)
			count += it.Quantity
			if it.Quantity < 1 {
				t.Fatalf("op %d: line %q has quantity %d", i, it.ID, it.Quantity)
			}
		}
		if got := c.Total(); got != want {
			t.Fatalf("op %d: total %d != recomputed %d", i, got, want)
		}
		if got := c.Count(); got != count {
			t.Fatalf("op %d: count %d != recomputed %d", i, got, count)
		}
	}
}

func TestFromItemsDropsInvalidLines(t *testing.T) {
	c := FromItems([]Item{
		{ID: "ok", Title: "OK", Price: 100, Quantity: 2, StockLimit: -1},
		{ID: "", Title: "no id", Price: 100, Quantity: 1},
		{ID: "zero-qty", Price: 100, Quantity: 0},
		{ID: "neg-price", Price: -5, Quantity: 1},
	})
	if c.Len() != 1 {
		t.Fatalf("expected 1 surviving line, got %d", c.Len())
	}
	if _, ok := c.Find("ok"); !ok {
		t.Fatal("expected valid line to survive")
	}
}

func TestLineIDDerivation(t *testing.T) {
	cases := []struct {
		title, variant, want string
	}{
		{"Sand-Etched Pint Glass", "", "sand-etched-pint-glass"},
		{"Sand-Etched Pint Glass", "16oz", "sand-etched-pint-glass--16oz"},
		{"  Weird   Title!!  ", "Size: L", "weird-title--size-l"},
	}
	for _, tc := range cases {
		if got := LineID(tc.title, tc.variant); got != tc.want {
			t.Errorf("LineID(%q, %q) = %q, want %q", tc.title, tc.variant, got, tc.want)
		}
	}
}

func TestDisplayTitleEchoesVariant(t *testing.T) {
	if got := DisplayTitle("Glass", "16oz"); got != "Glass (16oz)" {
		t.Errorf("unexpected display title %q", got)
	}
	if got := DisplayTitle("Glass", ""); got != "Glass" {
		t.Errorf("unexpected display title %q", got)
	}
}
