package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// fileServerHandler serves ui/static and renders the not found page for everything else. notFoundChain wraps the
// not found page with the middleware of the other pages.
func (app *application) fileServerHandler(notFoundChain func(http.Handler) http.Handler) (http.Handler, error) {
	fileRoot, err := resolveUIDir("", "static")
	if err != nil {
		return nil, fmt.Errorf("resolve static dir: %w", err)
	}
	fileServer := http.FileServer(http.Dir(fileRoot))
	notFound := notFoundChain(http.HandlerFunc(app.notFound))

	static := app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
		commonContext(app.timeout(cacheForever(fileServer)))))))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := filepath.Clean(r.URL.Path)
		if strings.Contains(cleanPath, "..") {
			notFound.ServeHTTP(w, r)
			return
		}
		stat, statErr := os.Stat(filepath.Join(fileRoot, cleanPath))
		if statErr != nil || stat.IsDir() {
			notFound.ServeHTTP(w, r)
			return
		}
		static.ServeHTTP(w, r)
	}), nil
}
