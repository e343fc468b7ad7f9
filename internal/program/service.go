package program

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/skillplan/internal/skills"
	"github.com/myrjola/skillplan/internal/sqlite"
)

// Service generates weekly programs from skill selections and keeps them around for later viewing.
type Service struct {
	repo    *sqliteRepository
	catalog *skills.Catalog
	logger  *slog.Logger
}

// NewService creates a new program service.
func NewService(db *sqlite.Database, logger *slog.Logger, catalog *skills.Catalog) *Service {
	return &Service{
		repo:    newSQLiteRepository(db, logger),
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the skill catalog programs are generated from.
func (s *Service) Catalog() *skills.Catalog {
	return s.catalog
}

// CreateProgram generates a program for the selected skills and stores it.
//
// Selections that don't resolve to a catalog skill are skipped and only reported in the server log.
func (s *Service) CreateProgram(ctx context.Context, selected []SelectedSkill, daysPerWeek int) (Program, error) {
	assignment, err := Generate(s.catalog, selected, daysPerWeek)
	if err != nil {
		return Program{}, fmt.Errorf("generate: %w", err)
	}

	for _, u := range Unresolved(s.catalog, selected) {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "skill selection contributes no exercises",
			slog.String("skill_id", u.ID), slog.Int("start_level", u.StartLevel))
	}

	p := Program{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		DaysPerWeek: daysPerWeek,
		Skills:      append([]SelectedSkill{}, selected...),
		Week:        AssembleWeek(assignment, daysPerWeek),
	}
	if err = s.repo.Create(ctx, p); err != nil {
		return Program{}, fmt.Errorf("create program: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "created program",
		slog.String("program_id", p.ID.String()),
		slog.Int("days_per_week", daysPerWeek),
		slog.Int("exercises", assignment.Count()))
	return p, nil
}

// GetProgram retrieves a stored program. Returns ErrNotFound if it doesn't exist.
func (s *Service) GetProgram(ctx context.Context, id uuid.UUID) (Program, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Program{}, fmt.Errorf("get program %s: %w", id, err)
	}
	return p, nil
}

// ListPrograms retrieves the stored programs among ids, newest first.
func (s *Service) ListPrograms(ctx context.Context, ids []uuid.UUID) ([]Program, error) {
	programs, err := s.repo.List(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// DeleteProgram removes a stored program. Returns ErrNotFound if it doesn't exist.
func (s *Service) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete program %s: %w", id, err)
	}
	return nil
}
