package main

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/myrjola/skillplan/internal/errors"
	"github.com/myrjola/skillplan/internal/program"
)

const (
	formFieldSkill       = "skill"
	formFieldLevelPrefix = "level-"
	formFieldDays        = "days"
)

type selectedSkillView struct {
	ID       string
	Name     string
	StepName string
	Level    int
}

type dayView struct {
	Name        string
	Kind        program.DayKind
	TrainingDay int
	Focus       []string
	Exercises   []program.Exercise
}

type programTemplateData struct {
	BaseTemplateData
	ID          string
	CreatedAt   time.Time
	DaysPerWeek int
	Skills      []selectedSkillView
	Days        []dayView
	// Saved tells whether the program belongs to the visitor's session and can be deleted.
	Saved bool
}

// parseProgramForm reads the skill picker form. Levels that don't parse become zero so that the selection is
// reported as unresolved.
func parseProgramForm(r *http.Request) ([]program.SelectedSkill, int, error) {
	if err := r.ParseForm(); err != nil {
		return nil, 0, fmt.Errorf("parse form: %w", err)
	}
	var selected []program.SelectedSkill
	for _, id := range r.PostForm[formFieldSkill] {
		level, err := strconv.Atoi(r.PostForm.Get(formFieldLevelPrefix + id))
		if err != nil {
			level = 0
		}
		selected = append(selected, program.SelectedSkill{ID: id, StartLevel: level})
	}
	days, err := strconv.Atoi(r.PostForm.Get(formFieldDays))
	if err != nil {
		days = 0
	}
	return selected, days, nil
}

// validationMessage returns a human-readable explanation for errors caused by the visitor's input.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, program.ErrNoSkillsSelected):
		return "Select at least one skill.", true
	case errors.Is(err, program.ErrInvalidDaysPerWeek):
		return fmt.Sprintf("Choose between %d and %d training days per week.",
			program.MinDaysPerWeek, program.MaxDaysPerWeek), true
	default:
		return "", false
	}
}

func (app *application) programCreatePOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	selected, days, err := parseProgramForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p, err := app.programService.CreateProgram(ctx, selected, days)
	if err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			app.serverError(w, r, err)
			return
		}
		data, dataErr := app.newHomeTemplateData(r, selected, days)
		if dataErr != nil {
			app.serverError(w, r, dataErr)
			return
		}
		data.Error = msg
		app.render(w, r, http.StatusUnprocessableEntity, "home", data)
		return
	}

	app.rememberProgram(ctx, p.ID)
	redirect(w, r, "/programs/"+p.ID.String())
}

func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseProgramIDParam(r)
	if !ok {
		app.notFound(w, r)
		return
	}
	p, err := app.programService.GetProgram(ctx, id)
	if errors.Is(err, program.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	catalog := app.programService.Catalog()
	selected := make([]selectedSkillView, 0, len(p.Skills))
	for _, s := range p.Skills {
		view := selectedSkillView{ID: s.ID, Name: s.ID, StepName: "", Level: s.StartLevel}
		if skill, found := catalog.Lookup(s.ID); found {
			view.Name = skill.Name
			if step, hasStep := skill.Step(s.StartLevel); hasStep {
				view.StepName = step.Name
			}
		}
		selected = append(selected, view)
	}

	days := make([]dayView, 0, len(p.Week.Days))
	for _, d := range p.Week.Days {
		days = append(days, dayView{
			Name:        d.Weekday.String(),
			Kind:        d.Kind,
			TrainingDay: d.TrainingDay,
			Focus:       d.Focus,
			Exercises:   d.Exercises,
		})
	}

	app.render(w, r, http.StatusOK, "program", programTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		ID:               p.ID.String(),
		CreatedAt:        p.CreatedAt,
		DaysPerWeek:      p.DaysPerWeek,
		Skills:           selected,
		Days:             days,
		Saved:            slices.Contains(app.savedProgramIDs(ctx), p.ID),
	})
}

// programDeletePOST deletes a program the visitor created. Programs created by others can't be deleted.
func (app *application) programDeletePOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseProgramIDParam(r)
	if !ok || !app.forgetProgram(ctx, id) {
		app.notFound(w, r)
		return
	}
	if err := app.programService.DeleteProgram(ctx, id); err != nil && !errors.Is(err, program.ErrNotFound) {
		app.serverError(w, r, err)
		return
	}
	redirect(w, r, "/")
}
