package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/skillplan/internal/e2etest"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "SKILLPLAN_SQLITE_URL":
		return ":memory:", true
	case "SKILLPLAN_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

func Test_application_home(t *testing.T) {
	var (
		ctx = t.Context()
		doc *goquery.Document
	)
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	t.Run("Initial state", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/")
		if err != nil {
			t.Fatalf("Failed to get document: %v", err)
		}
		if got := doc.Find("input[name=skill]").Length(); got < 2 {
			t.Errorf("Expected the skill picker to list the catalog, got %d skills", got)
		}
		if got := doc.Find("select#days option[selected]").AttrOr("value", ""); got != "3" {
			t.Errorf("Expected 3 training days preselected, got %q", got)
		}
		if doc.Find(".saved-programs").Length() != 0 {
			t.Error("Expected no saved programs for a new visitor")
		}
	})

	t.Run("Create program", func(t *testing.T) {
		doc, err = client.BuildProgram(ctx, map[string]string{
			"Muscle Up":                      "muscle-up",
			"Starting level of Muscle Up":    "2",
			"Pistol Squat":                   "pistol-squat",
			"Starting level of Pistol Squat": "1",
			"Training days per week":         "4",
		})
		if err != nil {
			t.Fatalf("Failed to build program: %v", err)
		}
		if got := doc.Find("li.day").Length(); got != 7 {
			t.Errorf("Expected 7 days in the week, got %d", got)
		}
		if got := doc.Find("li.day[data-kind=training]").Length(); got != 4 {
			t.Errorf("Expected 4 training days, got %d", got)
		}
		if got := doc.Find("li.day[data-kind=test]").Length(); got != 1 {
			t.Errorf("Expected a test day, got %d", got)
		}
		if doc.Find(".exercise").Length() == 0 {
			t.Error("Expected exercises in the program")
		}
		if doc.Find(".selected-skills a[href='/skills/muscle-up']").Length() != 1 {
			t.Error("Expected a link to the selected skill")
		}
	})

	t.Run("Program listed on home", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/")
		if err != nil {
			t.Fatalf("Failed to get document: %v", err)
		}
		if got := doc.Find(".saved-programs li").Length(); got != 1 {
			t.Errorf("Expected 1 saved program, got %d", got)
		}
		if got := doc.Find(".saved-count").Text(); got != "1 saved" {
			t.Errorf("Expected saved program count in navigation, got %q", got)
		}
	})

	t.Run("Delete program", func(t *testing.T) {
		programURL, exists := doc.Find(".saved-programs a").Attr("href")
		if !exists {
			t.Fatal("Expected a link to the saved program")
		}
		doc, err = client.GetDoc(ctx, programURL)
		if err != nil {
			t.Fatalf("Failed to get program: %v", err)
		}
		doc, err = client.SubmitForm(ctx, doc, programURL+"/delete", nil)
		if err != nil {
			t.Fatalf("Failed to delete program: %v", err)
		}
		if doc.Find(".saved-programs").Length() != 0 {
			t.Error("Expected the program to be gone from the home page")
		}

		resp, getErr := client.Get(ctx, programURL)
		if getErr != nil {
			t.Fatalf("Failed to get deleted program: %v", getErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 for a deleted program, got %d", resp.StatusCode)
		}
		count, countErr := server.ProgramCount(ctx)
		if countErr != nil {
			t.Fatalf("Failed to count programs: %v", countErr)
		}
		if count != 0 {
			t.Errorf("Expected the program to be removed from the database, %d remain", count)
		}
	})
}

func Test_application_programCreatePOST_validation(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	tests := []struct {
		name    string
		form    map[string][]string
		wantErr string
	}{
		{
			name:    "no skills",
			form:    map[string][]string{"days": {"3"}},
			wantErr: "Select at least one skill.",
		},
		{
			name:    "too many days",
			form:    map[string][]string{"skill": {"handstand"}, "level-handstand": {"1"}, "days": {"7"}},
			wantErr: "Choose between 2 and 6 training days per week.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, postErr := client.PostForm(ctx, "/programs", tt.form)
			if postErr != nil {
				t.Fatalf("Failed to post form: %v", postErr)
			}
			defer func() {
				_ = resp.Body.Close()
			}()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("Expected status 422, got %d", resp.StatusCode)
			}
			doc, docErr := goquery.NewDocumentFromReader(resp.Body)
			if docErr != nil {
				t.Fatalf("Failed to parse document: %v", docErr)
			}
			if got := strings.TrimSpace(doc.Find(".error").Text()); got != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, got)
			}
		})
	}
}

func Test_application_programCreatePOST_blankSkill(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	resp, err := server.Client().PostForm(ctx, "/programs", map[string][]string{
		"skill":           {"muscle-up", ""},
		"level-muscle-up": {"1"},
		"days":            {"3"},
	})
	if err != nil {
		t.Fatalf("Failed to post form: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Request.URL.Path, "/programs/") {
		t.Fatalf("Expected redirect to the program page, got %d %s", resp.StatusCode, resp.Request.URL.Path)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if got := doc.Find(".exercise").Length(); got != 4 {
		t.Errorf("Expected the blank skill to contribute nothing next to muscle-up's 4 exercises, got %d", got)
	}
}

func Test_application_programDeletePOST_foreignProgram(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	owner := server.Client()
	doc, err := owner.BuildProgram(ctx, map[string]string{
		"Verticale":              "handstand",
		"Training days per week": "2",
	})
	if err != nil {
		t.Fatalf("Failed to build program: %v", err)
	}
	programURL := doc.Url.Path

	stranger, err := server.NewClient()
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	strangerDoc, err := stranger.GetDoc(ctx, programURL)
	if err != nil {
		t.Fatalf("Expected shared program link to be viewable: %v", err)
	}
	if _, err = e2etest.FindForm(strangerDoc, programURL+"/delete"); err == nil {
		t.Error("Expected no delete form for a program created by someone else")
	}
	resp, err := stranger.PostForm(ctx, programURL+"/delete", nil)
	if err != nil {
		t.Fatalf("Failed to post delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 when deleting someone else's program, got %d", resp.StatusCode)
	}
	if _, err = owner.GetDoc(ctx, programURL); err != nil {
		t.Errorf("Expected the program to survive: %v", err)
	}
}

func Test_crossOriginProtection(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL()+"/programs",
		strings.NewReader("skill=handstand&days=3"))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to do request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected cross-origin form submission to be blocked with 403, got %d", resp.StatusCode)
	}
}
