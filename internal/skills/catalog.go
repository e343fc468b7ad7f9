// Package skills holds the read-only catalog of skill progressions and the muscle groups each skill trains.
package skills

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Category is the discipline a skill belongs to.
type Category string

const (
	CategoryCalisthenics Category = "calisthenics"
	CategoryCardio       Category = "cardio"
	CategoryPowerlifting Category = "powerlifting"
	CategoryMobility     Category = "mobility"
)

const (
	minDifficulty = 1
	maxDifficulty = 5
)

var (
	ErrInvalidCatalog = errors.New("invalid skill catalog")
)

// ProgressionStep is one stage of a skill's difficulty ladder.
type ProgressionStep struct {
	Name         string   `yaml:"name"         json:"name"`
	Difficulty   int      `yaml:"difficulty"   json:"difficulty"`
	Instructions []string `yaml:"instructions" json:"instructions"`
}

// Skill is a named physical competency with an ordered progression. Steps[level-1] is the step for a proficiency
// level.
type Skill struct {
	ID                  string            `yaml:"id"              json:"id"`
	Name                string            `yaml:"name"            json:"name"`
	Category            Category          `yaml:"category"        json:"category"`
	DifficultyLevel     int               `yaml:"difficultyLevel" json:"difficultyLevel"`
	DescriptionMarkdown string            `yaml:"description"     json:"descriptionMarkdown"`
	Steps               []ProgressionStep `yaml:"steps"           json:"steps"`
}

// Step returns the progression step for the 1-based proficiency level.
func (s Skill) Step(level int) (ProgressionStep, bool) {
	if level < 1 || level > len(s.Steps) {
		return ProgressionStep{}, false
	}
	return s.Steps[level-1], true
}

type catalogFile struct {
	Skills       []Skill             `yaml:"skills"`
	MuscleGroups map[string][]string `yaml:"muscleGroups"`
}

// Catalog is an immutable, in-memory skill catalog. It is safe for concurrent use.
type Catalog struct {
	skills       []Skill
	index        map[string]int
	muscleGroups map[string][]string
}

// Load parses and validates a YAML catalog.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		skills:       file.Skills,
		index:        make(map[string]int, len(file.Skills)),
		muscleGroups: make(map[string][]string, len(file.MuscleGroups)),
	}

	var errs []error
	for i, skill := range file.Skills {
		if err := validateSkill(skill); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := c.index[skill.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: duplicate skill id %q", ErrInvalidCatalog, skill.ID))
			continue
		}
		c.index[skill.ID] = i
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for id, groups := range file.MuscleGroups {
		c.muscleGroups[id] = dedupe(groups)
	}

	return c, nil
}

// LoadFile reads a catalog from the YAML file at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

//nolint:gochecknoglobals // the embedded catalog is parsed only once.
var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(defaultCatalog)
})

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return loadDefault()
}

func validateSkill(s Skill) error {
	if s.ID == "" {
		return fmt.Errorf("%w: skill %q has no id", ErrInvalidCatalog, s.Name)
	}
	switch s.Category {
	case CategoryCalisthenics, CategoryCardio, CategoryPowerlifting, CategoryMobility:
	default:
		return fmt.Errorf("%w: skill %s has unknown category %q", ErrInvalidCatalog, s.ID, s.Category)
	}
	if s.DifficultyLevel < minDifficulty || s.DifficultyLevel > maxDifficulty {
		return fmt.Errorf("%w: skill %s difficulty level %d outside %d-%d",
			ErrInvalidCatalog, s.ID, s.DifficultyLevel, minDifficulty, maxDifficulty)
	}
	for i, step := range s.Steps {
		if step.Difficulty < minDifficulty || step.Difficulty > maxDifficulty {
			return fmt.Errorf("%w: skill %s step %d difficulty %d outside %d-%d",
				ErrInvalidCatalog, s.ID, i+1, step.Difficulty, minDifficulty, maxDifficulty)
		}
	}
	return nil
}

func dedupe(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

// Lookup returns a copy of the skill with the given id.
func (c *Catalog) Lookup(id string) (Skill, bool) {
	i, ok := c.index[id]
	if !ok {
		return Skill{}, false
	}
	return cloneSkill(c.skills[i]), true
}

// Skills returns copies of all skills in catalog order.
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, len(c.skills))
	for i, s := range c.skills {
		out[i] = cloneSkill(s)
	}
	return out
}

// MuscleGroups returns the muscle groups trained by the skill. Unknown skills train none.
func (c *Catalog) MuscleGroups(id string) []string {
	return slices.Clone(c.muscleGroups[id])
}

func cloneSkill(s Skill) Skill {
	steps := make([]ProgressionStep, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = ProgressionStep{
			Name:         step.Name,
			Difficulty:   step.Difficulty,
			Instructions: slices.Clone(step.Instructions),
		}
	}
	s.Steps = steps
	return s
}
