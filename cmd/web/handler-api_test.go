package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/skillplan/internal/e2etest"
	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

func Test_application_api(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	var created program.Program

	t.Run("List skills", func(t *testing.T) {
		var resp apiSkillsResponse
		status, getErr := client.GetJSON(ctx, "/api/skills", &resp)
		if getErr != nil {
			t.Fatalf("Failed to get skills: %v", getErr)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if len(resp.Skills) == 0 {
			t.Fatal("Expected skills in the catalog")
		}
		if resp.Skills[0].ID != "muscle-up" || len(resp.Skills[0].MuscleGroups) == 0 {
			t.Errorf("Expected muscle-up with muscle groups first, got %+v", resp.Skills[0])
		}
	})

	t.Run("Create program", func(t *testing.T) {
		req := apiCreateProgramRequest{
			Skills: []program.SelectedSkill{
				{ID: "front-lever", StartLevel: 1},
				{ID: "running-5k", StartLevel: 2},
			},
			DaysPerWeek: 3,
		}
		status, postErr := client.PostJSON(ctx, "/api/programs", req, &created)
		if postErr != nil {
			t.Fatalf("Failed to create program: %v", postErr)
		}
		if status != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", status)
		}
		if diff := cmp.Diff(req.Skills, created.Skills); diff != "" {
			t.Errorf("Selected skills mismatch (-want +got):\n%s", diff)
		}
		if got := len(created.Week.Days); got != 7 {
			t.Errorf("Expected a 7 day week, got %d", got)
		}
		if created.ExerciseCount() == 0 {
			t.Error("Expected exercises in the created program")
		}
	})

	t.Run("Get program", func(t *testing.T) {
		var got program.Program
		status, getErr := client.GetJSON(ctx, "/api/programs/"+created.ID.String(), &got)
		if getErr != nil {
			t.Fatalf("Failed to get program: %v", getErr)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if diff := cmp.Diff(created, got); diff != "" {
			t.Errorf("Program mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Blank skill id is skipped", func(t *testing.T) {
		selected := []program.SelectedSkill{
			{ID: "muscle-up", StartLevel: 1},
			{ID: "", StartLevel: 1},
		}
		p, createErr := client.CreateProgram(ctx, selected, 3)
		if createErr != nil {
			t.Fatalf("Failed to create program: %v", createErr)
		}
		if got := p.ExerciseCount(); got != 4 {
			t.Errorf("Expected only muscle-up's 4 exercises, got %d", got)
		}
		if diff := cmp.Diff(selected, p.Skills); diff != "" {
			t.Errorf("Selected skills mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Program page without session", func(t *testing.T) {
		doc, getErr := client.GetDoc(ctx, "/programs/"+created.ID.String())
		if getErr != nil {
			t.Fatalf("Failed to get program page: %v", getErr)
		}
		if doc.Find("li.day").Length() != 7 {
			t.Error("Expected the week of the API created program")
		}
		if _, formErr := e2etest.FindForm(doc, "/programs/"+created.ID.String()+"/delete"); formErr == nil {
			t.Error("Expected no delete form for a program created through the API")
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name       string
			method     string
			path       string
			body       any
			wantStatus int
			wantError  string
		}{
			{
				name:       "no skills",
				method:     http.MethodPost,
				path:       "/api/programs",
				body:       apiCreateProgramRequest{Skills: nil, DaysPerWeek: 3},
				wantStatus: http.StatusUnprocessableEntity,
				wantError:  "Select at least one skill.",
			},
			{
				name:   "too few days",
				method: http.MethodPost,
				path:   "/api/programs",
				body: apiCreateProgramRequest{
					Skills:      []program.SelectedSkill{{ID: "handstand", StartLevel: 1}},
					DaysPerWeek: 1,
				},
				wantStatus: http.StatusUnprocessableEntity,
				wantError:  "Choose between 2 and 6 training days per week.",
			},
			{
				name:       "unknown field",
				method:     http.MethodPost,
				path:       "/api/programs",
				body:       map[string]any{"skills": []any{}, "daysPerWeek": 3, "weeks": 4},
				wantStatus: http.StatusBadRequest,
				wantError:  "malformed request body",
			},
			{
				name:       "unknown program",
				method:     http.MethodGet,
				path:       "/api/programs/4b4c6e3e-5b0c-4f3e-9a57-0f2b1d2c3e4f",
				wantStatus: http.StatusNotFound,
				wantError:  "program not found",
			},
			{
				name:       "malformed program id",
				method:     http.MethodGet,
				path:       "/api/programs/42",
				wantStatus: http.StatusNotFound,
				wantError:  "program not found",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var (
					resp   errorResponse
					status int
					reqErr error
				)
				if tt.method == http.MethodPost {
					status, reqErr = client.PostJSON(ctx, tt.path, tt.body, &resp)
				} else {
					status, reqErr = client.GetJSON(ctx, tt.path, &resp)
				}
				if reqErr != nil {
					t.Fatalf("Request failed: %v", reqErr)
				}
				if status != tt.wantStatus {
					t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
				}
				if resp.Error != tt.wantError {
					t.Errorf("Expected error %q, got %q", tt.wantError, resp.Error)
				}
			})
		}
	})
}
