package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/skillplan/internal/e2etest"
	"github.com/myrjola/skillplan/internal/logging"
	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 30 * time.Second
	maxConcurrentOperations = 20
	numVisitors             = 50
	programsPerVisitor      = 5
	maxSelectedSkills       = 4
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
)

type catalogSkill struct {
	ID    string `json:"id"`
	Steps []struct {
		Name string `json:"name"`
	} `json:"steps"`
}

// fetchCatalog lists the skills the server offers.
func fetchCatalog(ctx context.Context, client *e2etest.Client) ([]catalogSkill, error) {
	var resp struct {
		Skills []catalogSkill `json:"skills"`
	}
	status, err := client.GetJSON(ctx, "/api/skills", &resp)
	if err != nil {
		return nil, fmt.Errorf("get skills: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get skills: unexpected status code: %d", status)
	}
	if len(resp.Skills) == 0 {
		return nil, errors.New("empty skill catalog")
	}
	return resp.Skills, nil
}

// randomSelection picks between one and maxSelectedSkills distinct skills at random starting levels.
func randomSelection(catalog []catalogSkill) []program.SelectedSkill {
	n := 1 + rand.IntN(min(maxSelectedSkills, len(catalog))) //nolint:gosec // load generation needs no crypto.
	selected := make([]program.SelectedSkill, 0, n)
	for _, i := range rand.Perm(len(catalog))[:n] { //nolint:gosec // load generation needs no crypto.
		s := catalog[i]
		selected = append(selected, program.SelectedSkill{
			ID:         s.ID,
			StartLevel: 1 + rand.IntN(max(1, len(s.Steps))), //nolint:gosec // load generation needs no crypto.
		})
	}
	return selected
}

func randomDaysPerWeek() int {
	return program.MinDaysPerWeek + rand.IntN(program.MaxDaysPerWeek-program.MinDaysPerWeek+1) //nolint:gosec,lll // no crypto.
}

// VisitorScenario plays a visitor who builds programs with the form, checks them through the API and finally
// deletes them.
func VisitorScenario(ctx context.Context, url string, catalog []catalogSkill) error {
	client, err := e2etest.NewClient(url)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	programURLs := make([]string, 0, programsPerVisitor)
	for range programsPerVisitor {
		form := map[string][]string{"days": {strconv.Itoa(randomDaysPerWeek())}}
		for _, s := range randomSelection(catalog) {
			form["skill"] = append(form["skill"], s.ID)
			form["level-"+s.ID] = []string{strconv.Itoa(s.StartLevel)}
		}
		resp, postErr := client.PostForm(ctx, "/programs", form)
		if postErr != nil {
			return fmt.Errorf("create program: %w", postErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Request.URL.Path, "/programs/") {
			return fmt.Errorf("create program: unexpected response %d %s", resp.StatusCode, resp.Request.URL.Path)
		}
		programURLs = append(programURLs, resp.Request.URL.Path)
	}

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return fmt.Errorf("get home: %w", err)
	}
	if got := doc.Find(".saved-programs li").Length(); got != programsPerVisitor {
		return fmt.Errorf("expected %d saved programs, got %d", programsPerVisitor, got)
	}

	for _, programURL := range programURLs {
		var p program.Program
		status, getErr := client.GetJSON(ctx, "/api"+programURL, &p)
		if getErr != nil {
			return fmt.Errorf("get program: %w", getErr)
		}
		if status != http.StatusOK {
			return fmt.Errorf("get program %s: unexpected status code: %d", programURL, status)
		}
		resp, postErr := client.PostForm(ctx, programURL+"/delete", nil)
		if postErr != nil {
			return fmt.Errorf("delete program: %w", postErr)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("delete program %s: unexpected status code: %d", programURL, resp.StatusCode)
		}
	}
	return nil
}

// RunLoadTest runs the visitor scenario concurrently and fails when too many scenarios fail.
func RunLoadTest(ctx context.Context, url string, catalog []catalogSkill, logger *slog.Logger) error {
	var successCount, failureCount int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for i := range numVisitors {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()
			if err := VisitorScenario(scenarioCtx, url, catalog); err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "Visitor scenario failed",
					slog.Int("visitor", i), slog.Any("error", err))
				atomic.AddInt64(&failureCount, 1)
				return nil
			}
			atomic.AddInt64(&successCount, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("wait for scenarios: %w", err)
	}

	successRate := float64(successCount) / float64(numVisitors) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test results",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	catalog, err := fetchCatalog(ctx, client)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to fetch catalog", slog.Any("error", err))
		os.Exit(1)
	}

	if err = RunLoadTest(ctx, url, catalog, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Int("visitors", numVisitors))
}
