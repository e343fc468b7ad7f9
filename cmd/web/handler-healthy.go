package main

import (
	"net/http"
	"strconv"
	"time"
)

type healthResponse struct {
	Status string `json:"status"`
	Skills int    `json:"skills"`
}

// healthy responds with a JSON object indicating that the server is healthy and how many skills it offers.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Skills: len(app.programService.Catalog().Skills()),
	})
}

// testTimeout sleeps for the duration given in the sleep_ms query parameter. It exercises the timeout middleware.
func (app *application) testTimeout(w http.ResponseWriter, r *http.Request) {
	sleepMs, err := strconv.Atoi(r.URL.Query().Get("sleep_ms"))
	if err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid sleep_ms parameter")
		return
	}

	select {
	case <-time.After(time.Duration(sleepMs) * time.Millisecond):
	case <-r.Context().Done():
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"status": "completed", "slept_ms": sleepMs})
}
