package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, srv http.Handler, path string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestShopListsProducts(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/shop", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Etched Vase", "$35", "Wave Print", "Sold out", "Inquire"} {
		if !strings.Contains(body, want) {
			t.Errorf("shop page missing %q", want)
		}
	}
}

func TestShopTagFilter(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/shop?tag=print", false)
	body := rec.Body.String()
	if !strings.Contains(body, "Wave Print") {
		t.Error("expected tagged product")
	}
	if strings.Contains(body, "Etched Vase") {
		t.Error("untagged product must be filtered out")
	}
}

func TestProductDetailPage(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/shop/etched-vase", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Etched Vase") || !strings.Contains(body, "Ships within 2 weeks") {
		t.Errorf("detail page incomplete: %s", body)
	}
	if !strings.Contains(body, `"@type":"Product"`) {
		t.Error("expected product JSON-LD")
	}

	rec = get(t, srv, "/shop/no-such-product", false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGalleryFilterAndLightboxWraparound(t *testing.T) {
	_, srv := newTestApp(t)

	rec := get(t, srv, "/gallery?tag=glasswork", false)
	body := rec.Body.String()
	if !strings.Contains(body, "Wave Study") || strings.Contains(body, "Field at Dusk") {
		t.Error("tag filter did not narrow the grid")
	}

	// two glasswork items: prev of the first wraps to the last
	rec = get(t, srv, "/gallery/lightbox?i=0&tag=glasswork", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	frag := rec.Body.String()
	if !strings.Contains(frag, "i=1&tag=glasswork") {
		t.Errorf("expected prev/next pointing at the other item: %s", frag)
	}
	if !strings.Contains(frag, "1 of 2") {
		t.Errorf("expected position indicator: %s", frag)
	}
}

func TestMusicPageRendersTracks(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/music", false)
	body := rec.Body.String()
	if !strings.Contains(body, "Morning Raga") || !strings.Contains(body, "<audio") {
		t.Errorf("music page incomplete: %s", body)
	}
}

func TestBlogIndexAndPost(t *testing.T) {
	_, srv := newTestApp(t)

	rec := get(t, srv, "/blog", false)
	if !strings.Contains(rec.Body.String(), "Etched Glass Process") {
		t.Fatal("expected post in index")
	}

	rec = get(t, srv, "/blog/etched-glass-process", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "min read") {
		t.Error("expected reading time")
	}
	if !strings.Contains(body, `href="#setup"`) {
		t.Error("expected table of contents anchor")
	}
	if !strings.Contains(body, `id="setup"`) {
		t.Error("expected heading id in rendered body")
	}

	rec = get(t, srv, "/blog/no-such-post", false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = get(t, srv, "/blog/../../etc/passwd", false)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected traversal rejected, got %d", rec.Code)
	}
}

func TestBlogIndexTextFilter(t *testing.T) {
	_, srv := newTestApp(t)

	// matches the article entry's preview in the content index
	rec := get(t, srv, "/blog?q=etching", false)
	if !strings.Contains(rec.Body.String(), "Etched Glass Process") {
		t.Error("expected matching post to remain listed")
	}

	rec = get(t, srv, "/blog?q=zzz-no-match", false)
	body := rec.Body.String()
	if strings.Contains(body, "Etched Glass Process") {
		t.Error("non-matching query must drop the post")
	}
	if !strings.Contains(body, "No posts match") {
		t.Error("expected empty-state message")
	}
	if !strings.Contains(body, `value="zzz-no-match"`) {
		t.Error("expected query echoed in the filter input")
	}
}

func TestSearchPageAndFragment(t *testing.T) {
	_, srv := newTestApp(t)

	rec := get(t, srv, "/search?q=etched", false)
	body := rec.Body.String()
	if !strings.Contains(body, "Etched Glass Process") {
		t.Error("expected title match in results")
	}

	rec = get(t, srv, "/search/results?q=etched+glass", true)
	if rec.Header().Get("HX-Push-Url") != "/search?q=etched+glass" {
		t.Errorf("unexpected push url %q", rec.Header().Get("HX-Push-Url"))
	}

	rec = get(t, srv, "/search?q=zzzznothing", false)
	if !strings.Contains(rec.Body.String(), "Nothing found") {
		t.Error("expected empty-state message")
	}
}

func TestSearchJSONRanksTitleFirst(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/search.json?q=etched", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out struct {
		Query   string `json:"query"`
		Results []struct {
			Title string `json:"title"`
			Score int    `json:"score"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Query != "etched" || len(out.Results) < 2 {
		t.Fatalf("unexpected payload: %+v", out)
	}
	for i := 1; i < len(out.Results); i++ {
		if out.Results[i].Score > out.Results[i-1].Score {
			t.Fatalf("results not sorted by score: %+v", out.Results)
		}
	}
}

func TestSearchJSONEmptyQuery(t *testing.T) {
	_, srv := newTestApp(t)
	rec := get(t, srv, "/search.json", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Fatalf("expected empty results array, got %s", rec.Body.String())
	}
}
