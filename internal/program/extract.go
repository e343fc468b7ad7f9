package program

import (
	"fmt"
	"slices"
	"strings"

	"github.com/myrjola/skillplan/internal/skills"
)

// nameWordCount is how many words of an instruction end up in an exercise name.
const nameWordCount = 4

// ExtractExercises turns the instructions of the skill's step at level into exercises.
//
// Unknown skills and levels outside the skill's progression yield no exercises. Old selections may refer to
// skills that have since been renamed or removed, and those must not break program generation.
func ExtractExercises(catalog *skills.Catalog, skillID string, level int) []Exercise {
	skill, ok := catalog.Lookup(skillID)
	if !ok {
		return nil
	}
	step, ok := skill.Step(level)
	if !ok {
		return nil
	}

	muscleGroups := catalog.MuscleGroups(skillID)
	exercises := make([]Exercise, 0, len(step.Instructions))
	for i, instruction := range step.Instructions {
		exercises = append(exercises, Exercise{
			Name:         exerciseName(skill.Name, instruction),
			Description:  instruction,
			MuscleGroups: slices.Clone(muscleGroups),
			IsPrimary:    i < primaryInstructionCount,
			SkillID:      skill.ID,
			SkillName:    skill.Name,
			StepName:     step.Name,
			Difficulty:   step.Difficulty,
		})
	}
	return exercises
}

func exerciseName(skillName, instruction string) string {
	words := strings.Fields(instruction)
	if len(words) > nameWordCount {
		words = words[:nameWordCount]
	}
	return fmt.Sprintf("%s: %s...", skillName, strings.Join(words, " "))
}
