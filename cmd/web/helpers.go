package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/myrjola/skillplan/internal/errors"
)

// savedProgramsSessionKey holds the ids of the programs the visitor created, newest last.
const savedProgramsSessionKey = "programIDs"

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseProgramIDParam parses the "id" path parameter as a program id.
func parseProgramIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// savedProgramIDs returns the program ids stored in the visitor's session, newest first.
func (app *application) savedProgramIDs(ctx context.Context) []uuid.UUID {
	stored, ok := app.sessionManager.Get(ctx, savedProgramsSessionKey).([]string)
	if !ok {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(stored))
	for _, s := range slices.Backward(stored) {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// maxSavedPrograms bounds the ids kept in a session. Each id becomes a query parameter when the programs are listed.
const maxSavedPrograms = 100

// rememberProgram adds id to the visitor's session, forgetting the oldest ids beyond maxSavedPrograms.
func (app *application) rememberProgram(ctx context.Context, id uuid.UUID) {
	stored, _ := app.sessionManager.Get(ctx, savedProgramsSessionKey).([]string)
	ids := append(slices.Clone(stored), id.String())
	if len(ids) > maxSavedPrograms {
		ids = ids[len(ids)-maxSavedPrograms:]
	}
	app.sessionManager.Put(ctx, savedProgramsSessionKey, ids)
}

// forgetProgram removes id from the visitor's session. It reports whether the id was there.
func (app *application) forgetProgram(ctx context.Context, id uuid.UUID) bool {
	stored, _ := app.sessionManager.Get(ctx, savedProgramsSessionKey).([]string)
	kept := slices.DeleteFunc(slices.Clone(stored), func(s string) bool { return s == id.String() })
	if len(kept) == len(stored) {
		return false
	}
	app.sessionManager.Put(ctx, savedProgramsSessionKey, kept)
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "marshal JSON response", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, msg string) {
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}
