package program

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestAssembleWeek_layout(t *testing.T) {
	type dayLayout struct {
		Weekday     time.Weekday
		Kind        DayKind
		TrainingDay int
	}
	var (
		mon = time.Monday
		tue = time.Tuesday
		wed = time.Wednesday
		thu = time.Thursday
		fri = time.Friday
		sat = time.Saturday
		sun = time.Sunday
	)
	rest := func(d time.Weekday) dayLayout { return dayLayout{Weekday: d, Kind: DayKindRest, TrainingDay: 0} }
	test := func(d time.Weekday) dayLayout { return dayLayout{Weekday: d, Kind: DayKindTest, TrainingDay: 0} }
	train := func(d time.Weekday, n int) dayLayout { return dayLayout{Weekday: d, Kind: DayKindTraining, TrainingDay: n} }

	tests := []struct {
		days int
		want []dayLayout
	}{
		{days: 1, want: []dayLayout{rest(mon), rest(tue), train(wed, 1), rest(thu), rest(fri), rest(sat), rest(sun)}},
		{days: 2, want: []dayLayout{train(mon, 1), rest(tue), rest(wed), train(thu, 2), rest(fri), rest(sat), rest(sun)}},
		{days: 3, want: []dayLayout{
			train(mon, 1), rest(tue), train(wed, 2), rest(thu), train(fri, 3), test(sat), rest(sun),
		}},
		{days: 4, want: []dayLayout{
			train(mon, 1), train(tue, 2), rest(wed), train(thu, 3), train(fri, 4), test(sat), rest(sun),
		}},
		{days: 5, want: []dayLayout{
			train(mon, 1), train(tue, 2), train(wed, 3), train(thu, 4), train(fri, 5), test(sat), rest(sun),
		}},
		{days: 6, want: []dayLayout{
			train(mon, 1), train(tue, 2), train(wed, 3), train(thu, 4), train(fri, 5), test(sat), train(sun, 6),
		}},
	}
	for _, tt := range tests {
		week := AssembleWeek(DayAssignment{}, tt.days)
		got := make([]dayLayout, 0, len(week.Days))
		for _, d := range week.Days {
			got = append(got, dayLayout{Weekday: d.Weekday, Kind: d.Kind, TrainingDay: d.TrainingDay})
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("AssembleWeek(days=%d) layout mismatch (-want +got):\n%s", tt.days, diff)
		}
	}
}

func TestAssembleWeek_carriesExercises(t *testing.T) {
	catalog := testCatalog(t)
	assignment, err := Generate(catalog, []SelectedSkill{{ID: "muscle-up", StartLevel: 1}}, 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	week := AssembleWeek(assignment, 3)

	if len(week.Days) != 7 { //nolint:mnd // days in a week
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}
	total := 0
	for _, d := range week.Days {
		total += len(d.Exercises)
		if d.Kind != DayKindTraining && len(d.Exercises) != 0 {
			t.Errorf("%s is %s but has exercises", d.Weekday, d.Kind)
		}
	}
	if total != assignment.Count() {
		t.Errorf("week has %d exercises, assignment has %d", total, assignment.Count())
	}

	monday := week.Days[0]
	if diff := cmp.Diff(names(assignment[1]), names(monday.Exercises)); diff != "" {
		t.Errorf("monday exercises mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"chest", "shoulders", "triceps", "back", "core"}, monday.Focus); diff != "" {
		t.Errorf("monday focus mismatch (-want +got):\n%s", diff)
	}
}
