package skills_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/skillplan/internal/skills"
)

func TestDefault(t *testing.T) {
	c, err := skills.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	muscleUp, ok := c.Lookup("muscle-up")
	if !ok {
		t.Fatal("expected muscle-up in default catalog")
	}
	step, ok := muscleUp.Step(1)
	if !ok {
		t.Fatal("expected muscle-up to have a first step")
	}
	wantInstructions := []string{"Pull-up esplosiva", "Transizione lenta", "Dip controllato", "Stretching finale"}
	if diff := cmp.Diff(wantInstructions, step.Instructions); diff != "" {
		t.Errorf("muscle-up step 1 instructions mismatch (-want +got):\n%s", diff)
	}
	wantGroups := []string{"chest", "shoulders", "triceps", "back", "core"}
	if diff := cmp.Diff(wantGroups, c.MuscleGroups("muscle-up")); diff != "" {
		t.Errorf("muscle-up muscle groups mismatch (-want +got):\n%s", diff)
	}

	// The mobility skill has no muscle group entry.
	if _, ok = c.Lookup("pancake-stretch"); !ok {
		t.Fatal("expected pancake-stretch in default catalog")
	}
	if got := c.MuscleGroups("pancake-stretch"); len(got) != 0 {
		t.Errorf("MuscleGroups(pancake-stretch) = %v, want empty", got)
	}

	again, err := skills.Default()
	if err != nil {
		t.Fatalf("Default() second call error = %v", err)
	}
	if again != c {
		t.Error("expected Default() to return the same catalog instance")
	}
}

func TestCatalog_Lookup_returnsCopy(t *testing.T) {
	c, err := skills.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	first, _ := c.Lookup("muscle-up")
	first.Steps[0].Instructions[0] = "mutated"
	first.Steps = nil

	second, _ := c.Lookup("muscle-up")
	if got := second.Steps[0].Instructions[0]; got != "Pull-up esplosiva" {
		t.Errorf("catalog was mutated through a lookup result: got %q", got)
	}

	groups := c.MuscleGroups("muscle-up")
	groups[0] = "mutated"
	if got := c.MuscleGroups("muscle-up")[0]; got != "chest" {
		t.Errorf("catalog muscle groups were mutated: got %q", got)
	}
}

func TestCatalog_Lookup_unknown(t *testing.T) {
	c, err := skills.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if _, ok := c.Lookup("nonexistent-skill-id"); ok {
		t.Error("expected unknown skill lookup to fail")
	}
	if got := c.MuscleGroups("nonexistent-skill-id"); len(got) != 0 {
		t.Errorf("MuscleGroups(unknown) = %v, want empty", got)
	}
}

func TestSkill_Step(t *testing.T) {
	s := skills.Skill{
		ID:                  "s",
		Name:                "S",
		Category:            skills.CategoryMobility,
		DifficultyLevel:     1,
		DescriptionMarkdown: "",
		Steps: []skills.ProgressionStep{
			{Name: "one", Difficulty: 1, Instructions: nil},
			{Name: "two", Difficulty: 2, Instructions: nil},
		},
	}
	tests := []struct {
		level    int
		wantName string
		wantOK   bool
	}{
		{level: 0, wantName: "", wantOK: false},
		{level: 1, wantName: "one", wantOK: true},
		{level: 2, wantName: "two", wantOK: true},
		{level: 3, wantName: "", wantOK: false},
	}
	for _, tt := range tests {
		step, ok := s.Step(tt.level)
		if ok != tt.wantOK || step.Name != tt.wantName {
			t.Errorf("Step(%d) = (%q, %v), want (%q, %v)", tt.level, step.Name, ok, tt.wantName, tt.wantOK)
		}
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid",
			yaml: `
skills:
  - id: a
    name: A
    category: cardio
    difficultyLevel: 1
    steps:
      - name: first
        difficulty: 1
        instructions: [run]
muscleGroups:
  a: [legs, legs, heart]
`,
			wantErr: false,
		},
		{
			name: "unknown category",
			yaml: `
skills:
  - id: a
    name: A
    category: juggling
    difficultyLevel: 1
`,
			wantErr: true,
		},
		{
			name: "difficulty out of range",
			yaml: `
skills:
  - id: a
    name: A
    category: cardio
    difficultyLevel: 6
`,
			wantErr: true,
		},
		{
			name: "step difficulty out of range",
			yaml: `
skills:
  - id: a
    name: A
    category: cardio
    difficultyLevel: 2
    steps:
      - name: first
        difficulty: 0
`,
			wantErr: true,
		},
		{
			name: "duplicate id",
			yaml: `
skills:
  - id: a
    name: A
    category: cardio
    difficultyLevel: 1
  - id: a
    name: B
    category: mobility
    difficultyLevel: 1
`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			yaml:    "skills: []\nfoods: []\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := skills.Load([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff([]string{"legs", "heart"}, c.MuscleGroups("a")); diff != "" {
				t.Errorf("muscle groups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_validationErrorsAreTyped(t *testing.T) {
	_, err := skills.Load([]byte("skills:\n  - id: a\n    name: A\n    category: nope\n    difficultyLevel: 1\n"))
	if !errors.Is(err, skills.ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}
