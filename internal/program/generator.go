package program

import (
	"fmt"

	"github.com/myrjola/skillplan/internal/skills"
)

// Generate extracts the exercises of every selected skill and distributes them over daysPerWeek training days.
//
// Selections that don't resolve to a catalog skill and step contribute no exercises. See [Unresolved].
func Generate(catalog *skills.Catalog, selected []SelectedSkill, daysPerWeek int) (DayAssignment, error) {
	if len(selected) == 0 {
		return nil, ErrNoSkillsSelected
	}
	if daysPerWeek < MinDaysPerWeek || daysPerWeek > MaxDaysPerWeek {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDaysPerWeek, daysPerWeek)
	}

	var exercises []Exercise
	for _, s := range selected {
		exercises = append(exercises, ExtractExercises(catalog, s.ID, s.StartLevel)...)
	}

	assignment, err := Distribute(exercises, daysPerWeek)
	if err != nil {
		return nil, fmt.Errorf("distribute %d exercises: %w", len(exercises), err)
	}
	return assignment, nil
}

// Unresolved returns the selections that refer to an unknown skill or a level outside the skill's progression.
func Unresolved(catalog *skills.Catalog, selected []SelectedSkill) []SelectedSkill {
	var unresolved []SelectedSkill
	for _, s := range selected {
		skill, ok := catalog.Lookup(s.ID)
		if !ok {
			unresolved = append(unresolved, s)
			continue
		}
		if _, ok = skill.Step(s.StartLevel); !ok {
			unresolved = append(unresolved, s)
		}
	}
	return unresolved
}
