package main

import (
	"slices"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

func Test_application_rememberProgram(t *testing.T) {
	app := &application{ //nolint:exhaustruct // this is a test
		logger:         testhelpers.NewTestLogger(t),
		sessionManager: scs.New(),
	}
	ctx, err := app.sessionManager.Load(t.Context(), "")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	created := make([]uuid.UUID, 0, maxSavedPrograms+5)
	for range maxSavedPrograms + 5 {
		id := uuid.New()
		created = append(created, id)
		app.rememberProgram(ctx, id)
	}

	saved := app.savedProgramIDs(ctx)
	if len(saved) != maxSavedPrograms {
		t.Fatalf("Expected %d saved programs, got %d", maxSavedPrograms, len(saved))
	}
	want := slices.Clone(created[len(created)-maxSavedPrograms:])
	slices.Reverse(want)
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("Expected the newest programs, newest first (-want +got):\n%s", diff)
	}

	if app.forgetProgram(ctx, created[0]) {
		t.Error("Expected the oldest program to be forgotten already")
	}
	if !app.forgetProgram(ctx, created[len(created)-1]) {
		t.Error("Expected the newest program to be in the session")
	}
	if got := len(app.savedProgramIDs(ctx)); got != maxSavedPrograms-1 {
		t.Errorf("Expected %d saved programs after forgetting one, got %d", maxSavedPrograms-1, got)
	}
}
