package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"steeleworks.org/atelier-web/internal/cart"
	"steeleworks.org/atelier-web/internal/catalog"
	"steeleworks.org/atelier-web/internal/seo"
)

// ShopView is the shop grid payload.
type ShopView struct {
	Products  []ProductCard
	Tags      []string
	ActiveTag string
	Notice    string
}

// ProductCard decorates a product with its URL slug for detail links.
type ProductCard struct {
	catalog.Product
	Slug string
}

// ProductView is the product detail payload.
type ProductView struct {
	ProductCard
	PriceCents int64
}

// ShopHandler renders the product grid, optionally filtered by ?tag=.
func (a *app) ShopHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalog.Products()
	if err != nil {
		a.renderUnavailable(w, r, "Shop")
		return
	}
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	view := ShopView{
		Products:  productCards(catalog.FilterProductsByTag(products, tag)),
		Tags:      productTags(products),
		ActiveTag: tag,
	}
	if r.URL.Query().Get("checkout") == "success" {
		view.Notice = "Thanks for your order. A confirmation is on its way."
	}

	vm := a.basePageData(r, "Shop")
	vm.SEO.Description = "Small-batch pieces and prints, made to order."
	vm.Shop = view
	renderPage(w, r, "shop", vm)
}

// ProductHandler renders one product's detail page, addressed by title slug.
func (a *app) ProductHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalog.Products()
	if err != nil {
		a.renderUnavailable(w, r, "Shop")
		return
	}
	slug := chi.URLParam(r, "slug")
	p, ok := findProductBySlug(products, slug)
	if !ok {
		http.NotFound(w, r)
		return
	}

	view := ProductView{
		ProductCard: ProductCard{Product: p, Slug: slug},
		PriceCents:  p.PriceCents(),
	}
	vm := a.basePageData(r, p.Title)
	vm.SEO.Description = p.Description
	vm.SEO.OG.Description = p.Description
	vm.SEO.OG.Image = p.Image
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Product(p.Title, p.Description, vm.SEO.Canonical, p.Image, p.PriceCents(), a.cfg.Checkout.Currency)),
	}
	vm.Product = view
	renderPage(w, r, "product", vm)
}

func productCards(products []catalog.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{Product: p, Slug: cart.LineID(p.Title, "")})
	}
	return cards
}

func findProductBySlug(products []catalog.Product, slug string) (catalog.Product, bool) {
	for _, p := range products {
		if cart.LineID(p.Title, "") == slug {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func productTags(products []catalog.Product) []string {
	seen := map[string]bool{}
	var tags []string
	for _, p := range products {
		for _, t := range p.Tags {
			key := strings.ToLower(t)
			if !seen[key] {
				seen[key] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
