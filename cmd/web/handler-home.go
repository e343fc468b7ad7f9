package main

import (
	"net/http"
	"time"

	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/skills"
)

const defaultDaysPerWeek = 3

type levelOption struct {
	Level int
	Name  string
}

type skillOption struct {
	ID         string
	Name       string
	Category   skills.Category
	Difficulty int
	Levels     []levelOption
	Selected   bool
	StartLevel int
}

type programSummary struct {
	ID          string
	CreatedAt   time.Time
	DaysPerWeek int
	SkillNames  []string
	Exercises   int
}

type homeTemplateData struct {
	BaseTemplateData
	Skills      []skillOption
	DayOptions  []int
	DaysPerWeek int
	// Error explains why the submitted form was rejected.
	Error    string
	Programs []programSummary
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data, err := app.newHomeTemplateData(r, nil, defaultDaysPerWeek)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "home", data)
}

// newHomeTemplateData builds the skill picker with selected prefilled and lists the visitor's saved programs.
func (app *application) newHomeTemplateData(
	r *http.Request,
	selected []program.SelectedSkill,
	daysPerWeek int,
) (homeTemplateData, error) {
	catalog := app.programService.Catalog()

	startLevels := make(map[string]int, len(selected))
	for _, s := range selected {
		startLevels[s.ID] = s.StartLevel
	}

	catalogSkills := catalog.Skills()
	options := make([]skillOption, 0, len(catalogSkills))
	for _, s := range catalogSkills {
		opt := skillOption{
			ID:         s.ID,
			Name:       s.Name,
			Category:   s.Category,
			Difficulty: s.DifficultyLevel,
			Levels:     make([]levelOption, 0, len(s.Steps)),
			Selected:   false,
			StartLevel: 1,
		}
		if level, ok := startLevels[s.ID]; ok {
			opt.Selected = true
			opt.StartLevel = level
		}
		for i, step := range s.Steps {
			opt.Levels = append(opt.Levels, levelOption{Level: i + 1, Name: step.Name})
		}
		options = append(options, opt)
	}

	dayOptions := make([]int, 0, program.MaxDaysPerWeek-program.MinDaysPerWeek+1)
	for n := program.MinDaysPerWeek; n <= program.MaxDaysPerWeek; n++ {
		dayOptions = append(dayOptions, n)
	}

	saved, err := app.programService.ListPrograms(r.Context(), app.savedProgramIDs(r.Context()))
	if err != nil {
		return homeTemplateData{}, err //nolint:wrapcheck // service errors are already wrapped.
	}
	summaries := make([]programSummary, 0, len(saved))
	for _, p := range saved {
		summaries = append(summaries, programSummary{
			ID:          p.ID.String(),
			CreatedAt:   p.CreatedAt,
			DaysPerWeek: p.DaysPerWeek,
			SkillNames:  skillNames(catalog, p.Skills),
			Exercises:   p.ExerciseCount(),
		})
	}

	return homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Skills:           options,
		DayOptions:       dayOptions,
		DaysPerWeek:      daysPerWeek,
		Error:            "",
		Programs:         summaries,
	}, nil
}

// skillNames resolves the display names of the selections, falling back to the id for skills missing from the
// catalog.
func skillNames(catalog *skills.Catalog, selected []program.SelectedSkill) []string {
	names := make([]string, 0, len(selected))
	for _, s := range selected {
		if skill, ok := catalog.Lookup(s.ID); ok {
			names = append(names, skill.Name)
			continue
		}
		names = append(names, s.ID)
	}
	return names
}
