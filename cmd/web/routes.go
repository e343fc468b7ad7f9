package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		stateless = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				shared(app.savedProgramsContext(next)))))
		}
	)

	mux.Handle("GET /programs/{id}", session(http.HandlerFunc(app.programGET)))
	mux.Handle("POST /programs", session(http.HandlerFunc(app.programCreatePOST)))
	mux.Handle("POST /programs/{id}/delete", session(http.HandlerFunc(app.programDeletePOST)))
	mux.Handle("GET /skills/{id}", session(http.HandlerFunc(app.skillGET)))

	mux.Handle("GET /api/healthy", stateless(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/skills", stateless(http.HandlerFunc(app.apiSkillsGET)))
	mux.Handle("POST /api/programs", stateless(http.HandlerFunc(app.apiProgramsPOST)))
	mux.Handle("GET /api/programs/{id}", stateless(http.HandlerFunc(app.apiProgramGET)))
	mux.Handle("POST /api/csp-violation", stateless(http.HandlerFunc(app.cspViolation)))
	mux.Handle("GET /api/test/timeout", stateless(http.HandlerFunc(app.testTimeout)))

	// Home route (most specific)
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	// File server with custom 404 handling
	fileServerHandler, err := app.fileServerHandler(session)
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
