package e2etest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/skillplan/internal/program"
)

// BuildProgram fills the skill picker on the home page and returns the program page the form redirects to.
// formFields maps label text to value like in SubmitForm, e.g. {"Muscle Up": "muscle-up", "Training days per week":
// "3"}. The program is remembered in the client's session.
func (c *Client) BuildProgram(ctx context.Context, formFields map[string]string) (*goquery.Document, error) {
	home, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("get home: %w", err)
	}
	doc, err := c.SubmitForm(ctx, home, "/programs", formFields)
	if err != nil {
		return nil, fmt.Errorf("submit program form: %w", err)
	}
	if !strings.HasPrefix(doc.Url.Path, "/programs/") {
		return nil, fmt.Errorf("expected redirect to the program page, got %s", doc.Url.Path)
	}
	return doc, nil
}

// CreateProgram creates a program through the JSON API. API clients have no session, so the program isn't listed
// on the home page.
func (c *Client) CreateProgram(
	ctx context.Context,
	selected []program.SelectedSkill,
	daysPerWeek int,
) (program.Program, error) {
	req := struct {
		Skills      []program.SelectedSkill `json:"skills"`
		DaysPerWeek int                     `json:"daysPerWeek"`
	}{Skills: selected, DaysPerWeek: daysPerWeek}
	var created program.Program
	status, err := c.PostJSON(ctx, "/api/programs", req, &created)
	if err != nil {
		return program.Program{}, fmt.Errorf("post program: %w", err)
	}
	if status != http.StatusCreated {
		return program.Program{}, fmt.Errorf("unexpected status code: %d", status)
	}
	return created, nil
}
