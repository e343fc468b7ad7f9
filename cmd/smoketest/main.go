package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/skillplan/internal/e2etest"
	"github.com/myrjola/skillplan/internal/logging"
	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/testhelpers"
)

// TestProgramCreation creates a program through the HTML form and through the JSON API.
func TestProgramCreation(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	doc, err := client.BuildProgram(ctx, map[string]string{
		"Verticale":              "handstand",
		"Training days per week": "3",
	})
	if err != nil {
		return fmt.Errorf("build program: %w", err)
	}
	if _, err = client.SubmitForm(ctx, doc, doc.Url.Path+"/delete", nil); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}

	selected := []program.SelectedSkill{{ID: "pull-up", StartLevel: 1}}
	if _, err = client.CreateProgram(ctx, selected, 2); err != nil { //nolint:mnd // two training days
		return fmt.Errorf("create program with API: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestProgramCreation(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing program creation", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
