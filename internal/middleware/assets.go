package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AssetsWithCache serves static files with Cache-Control and weak ETag
// handling. ETags are computed on first request and kept for the process
// lifetime; background images rotate by filename so staleness is bounded.
func AssetsWithCache(dir string) http.Handler {
	var mu sync.Mutex
	etags := map[string]string{}

	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")

		rel := strings.TrimPrefix(r.URL.Path, "/assets")
		mu.Lock()
		et, ok := etags[rel]
		mu.Unlock()
		if !ok {
			et, _ = fileETag(filepath.Join(dir, filepath.FromSlash(rel)))
			mu.Lock()
			etags[rel] = et
			mu.Unlock()
		}
		if et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
