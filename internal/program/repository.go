package program

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/skillplan/internal/errors"
	"github.com/myrjola/skillplan/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository stores programs in SQLite. The week is stored as a JSON snapshot so that later catalog changes
// don't rewrite programs users already follow.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the program and its skill selections.
func (r *sqliteRepository) Create(ctx context.Context, p Program) error {
	weekJSON, err := json.Marshal(p.Week)
	if err != nil {
		return fmt.Errorf("marshal week: %w", err)
	}

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback transaction", slog.Any("error", rollbackErr))
		}
	}(tx)

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO programs (id, created_at, days_per_week, week_json)
		VALUES (?, ?, ?, ?)`,
		p.ID.String(), p.CreatedAt.UTC().Format(timestampFormat), p.DaysPerWeek, string(weekJSON)); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}

	for i, s := range p.Skills {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO program_skills (program_id, position, skill_id, start_level)
			VALUES (?, ?, ?, ?)`,
			p.ID.String(), i, s.ID, s.StartLevel); err != nil {
			return fmt.Errorf("insert program skill %s: %w", s.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a program by id. Returns ErrNotFound if the program doesn't exist.
func (r *sqliteRepository) Get(ctx context.Context, id uuid.UUID) (Program, error) {
	var (
		createdAtStr string
		weekJSON     string
		p            = Program{ID: id} //nolint:exhaustruct // populated below.
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT created_at, days_per_week, week_json
		FROM programs
		WHERE id = ?`, id.String()).Scan(&createdAtStr, &p.DaysPerWeek, &weekJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Program{}, ErrNotFound
	}
	if err != nil {
		return Program{}, fmt.Errorf("query program: %w", err)
	}

	if p.CreatedAt, err = time.Parse(timestampFormat, createdAtStr); err != nil {
		return Program{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err = json.Unmarshal([]byte(weekJSON), &p.Week); err != nil {
		return Program{}, fmt.Errorf("unmarshal week: %w", err)
	}
	if p.Skills, err = r.listSkills(ctx, id); err != nil {
		return Program{}, fmt.Errorf("list skills: %w", err)
	}
	return p, nil
}

func (r *sqliteRepository) listSkills(ctx context.Context, id uuid.UUID) (_ []SelectedSkill, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT skill_id, start_level
		FROM program_skills
		WHERE program_id = ?
		ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query program skills: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	selected := []SelectedSkill{}
	for rows.Next() {
		var s SelectedSkill
		if err = rows.Scan(&s.ID, &s.StartLevel); err != nil {
			return nil, fmt.Errorf("scan program skill: %w", err)
		}
		selected = append(selected, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return selected, nil
}

// List retrieves the programs with the given ids, newest first. Ids that don't exist are skipped.
func (r *sqliteRepository) List(ctx context.Context, ids []uuid.UUID) (_ []Program, err error) {
	if len(ids) == 0 {
		return []Program{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id
		FROM programs
		WHERE id IN (`+placeholders+`)
		ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var found []uuid.UUID
	for rows.Next() {
		var idStr string
		if err = rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("scan program id: %w", err)
		}
		var id uuid.UUID
		if id, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse program id %s: %w", idStr, err)
		}
		found = append(found, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	programs := make([]Program, 0, len(found))
	for _, id := range found {
		var p Program
		if p, err = r.Get(ctx, id); err != nil {
			return nil, fmt.Errorf("get program %s: %w", id, err)
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// Delete removes a program. Returns ErrNotFound if the program doesn't exist.
func (r *sqliteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
