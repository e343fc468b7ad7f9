package program

import (
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/skillplan/internal/errors"
)

const (
	MinDaysPerWeek = 2
	MaxDaysPerWeek = 6

	// primaryInstructionCount is how many leading instructions of a step count as primary work.
	primaryInstructionCount = 3
)

var (
	ErrInvalidDaysPerWeek = errors.NewSentinel("days per week must be between 2 and 6")
	ErrNoSkillsSelected   = errors.NewSentinel("no skills selected")
	ErrNotFound           = errors.NewSentinel("not found")
)

// SelectedSkill is a skill the user wants to train starting from a proficiency level.
type SelectedSkill struct {
	ID         string `json:"id"`
	StartLevel int    `json:"startLevel"`
}

// Exercise is a single instruction of a progression step turned into something that can be scheduled.
type Exercise struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MuscleGroups []string `json:"muscleGroups"`
	IsPrimary    bool     `json:"isPrimary"`
	SkillID      string   `json:"skillId"`
	SkillName    string   `json:"skillName"`
	StepName     string   `json:"stepName"`
	Difficulty   int      `json:"difficulty"`
}

// DayAssignment maps training day numbers 1..daysPerWeek to the exercises scheduled on that day.
type DayAssignment map[int][]Exercise

// Count returns the number of exercises over all days.
func (a DayAssignment) Count() int {
	n := 0
	for _, exercises := range a {
		n += len(exercises)
	}
	return n
}

// DayKind tells what happens on a day of the week.
type DayKind string

const (
	DayKindTraining DayKind = "training"
	DayKindTest     DayKind = "test"
	DayKindRest     DayKind = "rest"
)

// ScheduleDay is one weekday of a weekly program.
type ScheduleDay struct {
	Weekday time.Weekday `json:"weekday"`
	Kind    DayKind      `json:"kind"`
	// TrainingDay is the 1-based training day number hosted on this weekday, zero unless Kind is training.
	TrainingDay int        `json:"trainingDay,omitempty"`
	Exercises   []Exercise `json:"exercises"`
	// Focus lists the muscle groups trained on the day in first-seen order.
	Focus []string `json:"focus"`
}

// Week is a Monday-first weekly schedule with exactly seven days.
type Week struct {
	Days []ScheduleDay `json:"days"`
}

// Program is a persisted weekly training program.
type Program struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	DaysPerWeek int             `json:"daysPerWeek"`
	Skills      []SelectedSkill `json:"skills"`
	Week        Week            `json:"week"`
}

// ExerciseCount returns the number of exercises scheduled during the week.
func (p Program) ExerciseCount() int {
	n := 0
	for _, d := range p.Week.Days {
		n += len(d.Exercises)
	}
	return n
}
