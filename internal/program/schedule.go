package program

import (
	"slices"
	"time"
)

// weekOrder lists the weekdays Monday first.
//
//nolint:gochecknoglobals // read-only lookup table.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// trainingWeekdays returns the weekdays hosting training days 1..daysPerWeek, in training day order.
func trainingWeekdays(daysPerWeek int) []time.Weekday {
	switch {
	case daysPerWeek <= 0:
		return nil
	case daysPerWeek == 1:
		return []time.Weekday{time.Wednesday}
	case daysPerWeek == 2: //nolint:mnd // two day split
		return []time.Weekday{time.Monday, time.Thursday}
	case daysPerWeek == 3: //nolint:mnd // three day split
		return []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	case daysPerWeek == 4: //nolint:mnd // four day split
		return []time.Weekday{time.Monday, time.Tuesday, time.Thursday, time.Friday}
	case daysPerWeek == 5: //nolint:mnd // five day split
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	default:
		// Saturday stays free for testing progress.
		return []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Sunday,
		}
	}
}

// testDayThreshold is the number of training days from which Saturday becomes a test day.
const testDayThreshold = 3

// AssembleWeek lays the training days of assignment out over a Monday-first week. Days not hosting training are rest
// days, except Saturday, which is a test day once there are at least three training days.
func AssembleWeek(assignment DayAssignment, daysPerWeek int) Week {
	hosts := trainingWeekdays(daysPerWeek)
	week := Week{Days: make([]ScheduleDay, 0, len(weekOrder))}
	for _, weekday := range weekOrder {
		day := ScheduleDay{
			Weekday:     weekday,
			Kind:        DayKindRest,
			TrainingDay: 0,
			Exercises:   []Exercise{},
			Focus:       []string{},
		}
		if i := slices.Index(hosts, weekday); i >= 0 {
			day.Kind = DayKindTraining
			day.TrainingDay = i + 1
			if exercises := assignment[i+1]; exercises != nil {
				day.Exercises = exercises
			}
			day.Focus = focus(day.Exercises)
		} else if weekday == time.Saturday && daysPerWeek >= testDayThreshold {
			day.Kind = DayKindTest
		}
		week.Days = append(week.Days, day)
	}
	return week
}

func focus(exercises []Exercise) []string {
	groups := []string{}
	for _, ex := range exercises {
		for _, g := range ex.MuscleGroups {
			if !slices.Contains(groups, g) {
				groups = append(groups, g)
			}
		}
	}
	return groups
}
