package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/skillplan/internal/e2etest"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

func Test_application_notFound(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()

	tests := []struct {
		name string
		path string
	}{
		{name: "Nonexistent path", path: "/nonexistent"},
		{name: "Malformed program ID", path: "/programs/not-a-uuid"},
		{name: "Unknown program", path: "/programs/4b4c6e3e-5b0c-4f3e-9a57-0f2b1d2c3e4f"},
		{name: "Unknown skill", path: "/skills/levitation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, getErr := client.Get(ctx, tt.path)
			if getErr != nil {
				t.Fatalf("Failed to get %s: %v", tt.path, getErr)
			}
			defer func() {
				_ = resp.Body.Close()
			}()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("Expected status code %d, got %d", http.StatusNotFound, resp.StatusCode)
			}
			doc, docErr := goquery.NewDocumentFromReader(resp.Body)
			if docErr != nil {
				t.Fatalf("Failed to parse 404 document: %v", docErr)
			}
			checkCustom404Content(t, doc)
		})
	}
}

func checkCustom404Content(t *testing.T, doc *goquery.Document) {
	t.Helper()

	if title := doc.Find("h1").Text(); !strings.Contains(title, "404") {
		t.Errorf("Expected 404 page title to contain '404', got: %s", title)
	}
	if subtitle := doc.Find("h2").Text(); !strings.Contains(subtitle, "Page Not Found") {
		t.Errorf("Expected 404 page to contain 'Page Not Found', got: %s", subtitle)
	}
	homeLinks := doc.Find("main a[href='/']")
	if homeLinks.Length() == 0 {
		t.Fatal("Expected 404 page to contain a home link")
	}
	if homeText := homeLinks.First().Text(); !strings.Contains(homeText, "Go Home") {
		t.Errorf("Expected home link to say 'Go Home', got: %s", homeText)
	}
}
