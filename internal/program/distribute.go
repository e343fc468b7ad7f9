package program

import (
	"cmp"
	"fmt"
	"slices"
)

// Scoring weights of the placement heuristics.
const (
	primaryConflictWeight = 3
	sameSkillBonus        = 2
	loadPenaltyDivisor    = 2.0
)

// dayState accumulates what has been placed on one training day during a single Distribute call.
type dayState struct {
	exercises []Exercise
	used      map[string]struct{}
}

func (d *dayState) add(ex Exercise) {
	d.exercises = append(d.exercises, ex)
	for _, group := range ex.MuscleGroups {
		d.used[group] = struct{}{}
	}
}

// conflicts counts the distinct muscle groups of ex already trained on the day.
func (d *dayState) conflicts(ex Exercise) int {
	n := 0
	for i, group := range ex.MuscleGroups {
		if slices.Contains(ex.MuscleGroups[:i], group) {
			continue
		}
		if _, ok := d.used[group]; ok {
			n++
		}
	}
	return n
}

func (d *dayState) hasSkill(skillID string) bool {
	return slices.ContainsFunc(d.exercises, func(ex Exercise) bool {
		return ex.SkillID == skillID
	})
}

// Distribute assigns every exercise to exactly one of the training days 1..daysPerWeek.
//
// Primary exercises are placed first, hardest first, on the day with the fewest muscle group conflicts and
// exercises. Secondary exercises follow in their original order and prefer days that already train the same skill.
// Ties go to the lowest day number.
func Distribute(exercises []Exercise, daysPerWeek int) (DayAssignment, error) {
	if daysPerWeek < MinDaysPerWeek || daysPerWeek > MaxDaysPerWeek {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDaysPerWeek, daysPerWeek)
	}

	days := make([]dayState, daysPerWeek)
	for i := range days {
		days[i].used = make(map[string]struct{})
	}

	var primary, secondary []Exercise
	for _, ex := range exercises {
		if ex.IsPrimary {
			primary = append(primary, ex)
		} else {
			secondary = append(secondary, ex)
		}
	}
	slices.SortStableFunc(primary, func(a, b Exercise) int {
		return cmp.Compare(b.Difficulty, a.Difficulty)
	})

	for _, ex := range primary {
		days[bestPrimaryDay(days, ex)].add(ex)
	}
	for _, ex := range secondary {
		days[bestSecondaryDay(days, ex)].add(ex)
	}

	assignment := make(DayAssignment, daysPerWeek)
	for i, d := range days {
		assignment[i+1] = d.exercises
		if assignment[i+1] == nil {
			assignment[i+1] = []Exercise{}
		}
	}
	return assignment, nil
}

// bestPrimaryDay returns the index of the day with the lowest conflict and load score.
func bestPrimaryDay(days []dayState, ex Exercise) int {
	best, bestScore := 0, 0
	for i := range days {
		score := days[i].conflicts(ex)*primaryConflictWeight + len(days[i].exercises)
		if i == 0 || score < bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// bestSecondaryDay returns the index of the day with the highest same skill bonus after conflict and load
// penalties.
func bestSecondaryDay(days []dayState, ex Exercise) int {
	var (
		best      int
		bestScore float64
	)
	for i := range days {
		bonus := 0
		if days[i].hasSkill(ex.SkillID) {
			bonus = sameSkillBonus
		}
		score := float64(bonus-days[i].conflicts(ex)) - float64(len(days[i].exercises))/loadPenaltyDivisor
		if i == 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
