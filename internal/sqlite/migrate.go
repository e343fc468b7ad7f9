package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"
)

// migrateTo brings the live schema in line with schemaDefinition declaratively.
//
// The target schema is created in an attached in-memory database and diffed against the live one. Removed tables are
// dropped, added tables created, and changed tables rebuilt with the generalized ALTER TABLE procedure from
// https://www.sqlite.org/lang_altertable.html#otheralter. Indexes and triggers are synchronised last.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target database: %w", err)
	}
	defer detach()

	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign key validation: %w", err)
	}
	defer db.enableForeignKeys(ctx)

	var tx *sql.Tx
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []schemaType{schemaTypeTrigger, schemaTypeIndex} {
		if err = db.migrateSchema(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// enableForeignKeys turns foreign key validation back on. The process is stopped if that fails to avoid data
// corruption.
func (db *Database) enableForeignKeys(ctx context.Context) {
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "exit to avoid data corruption",
			slog.Any("error", fmt.Errorf("re-enable foreign key validation: %w", err)))
		if err = syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			os.Exit(1)
		}
	}
}

// attachSchemaTarget attaches an in-memory database initialised with schemaDefinition as schemaTarget. The returned
// function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schema target database: %w", err)
	}
	// The shared cache keeps the in-memory database alive while it is attached.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("migrate schema target database: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach schema target database: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target database",
				slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
			slog.Any("error", fmt.Errorf("rollback transaction: %w", err)))
	}
}

type schemaType string

const (
	schemaTypeTable   schemaType = "table"
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
)

// Internal SQLite objects and Litestream bookkeeping tables are never touched.
const ignoredNames = `name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%'`

// Diff queries between the live schema and schemaTarget. Each takes the schema type as its only argument. Table
// renames add double quotes around the name, so quotes are ignored when comparing definitions.
const (
	queryDeleted = `SELECT name FROM sqlite_schema AS live
WHERE type = ?1 AND ` + ignoredNames + `
  AND NOT EXISTS (SELECT 1 FROM schemaTarget.sqlite_schema AS target
                  WHERE target.name = live.name AND target.type = live.type)`
	queryCreated = `SELECT sql FROM schemaTarget.sqlite_schema AS target
WHERE type = ?1 AND ` + ignoredNames + `
  AND NOT EXISTS (SELECT 1 FROM sqlite_schema AS live
                  WHERE live.name = target.name AND live.type = target.type)`
	queryChanged = `SELECT live.name, live.sql, target.sql
FROM sqlite_schema AS live
JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ?1 AND live.name NOT LIKE 'sqlite_%' AND live.name NOT LIKE '_litestream_%'
  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`
)

type changedSchema struct {
	name    string
	liveSQL string
	newSQL  string
}

// migrateTables drops, creates and rebuilds tables so that they match schemaTarget.
func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	deleted, err := db.queryStrings(ctx, tx, queryDeleted, schemaTypeTable)
	if err != nil {
		return fmt.Errorf("query deleted tables: %w", err)
	}
	for _, table := range deleted {
		if err = db.exec(ctx, tx, "dropping table", "DROP TABLE "+table); err != nil {
			return err
		}
	}

	created, err := db.queryStrings(ctx, tx, queryCreated, schemaTypeTable)
	if err != nil {
		return fmt.Errorf("query new tables: %w", err)
	}
	for _, createSQL := range created {
		if err = db.exec(ctx, tx, "creating table", createSQL); err != nil {
			return err
		}
	}

	changed, err := db.queryChanged(ctx, tx, schemaTypeTable)
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	for _, table := range changed {
		if err = db.rebuildTable(ctx, tx, table); err != nil {
			return fmt.Errorf("rebuild table %s: %w", table.name, err)
		}
	}
	return nil
}

// rebuildTable creates the new definition under a temporary name, copies the common columns over, and swaps the
// tables.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table changedSchema) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", table.name),
		slog.String("live_sql", table.liveSQL),
		slog.String("new_sql", table.newSQL))

	tempName := table.name + "_migration_temp"
	if err := db.exec(ctx, tx, "creating table with temporary name",
		strings.Replace(table.newSQL, table.name, tempName, 1)); err != nil {
		return err
	}

	// Quoted so that columns named after SQLite keywords work.
	columns, err := db.queryStrings(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table_name", table.name))
	if err != nil {
		return fmt.Errorf("query common columns: %w", err)
	}
	common := strings.Join(columns, ", ")

	steps := []struct{ msg, query string }{
		{"copying data", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, common, common, table.name)},
		{"dropping old table", "DROP TABLE " + table.name},
		{"renaming new table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)},
	}
	for _, step := range steps {
		if err = db.exec(ctx, tx, step.msg, step.query); err != nil {
			return err
		}
	}
	return nil
}

// migrateSchema synchronises the indexes or triggers with schemaTarget.
func (db *Database) migrateSchema(ctx context.Context, tx *sql.Tx, typ schemaType) error {
	keyword := strings.ToUpper(string(typ))

	deleted, err := db.queryStrings(ctx, tx, queryDeleted, typ)
	if err != nil {
		return fmt.Errorf("query deleted: %w", err)
	}
	for _, name := range deleted {
		if err = db.exec(ctx, tx, "dropping "+string(typ), fmt.Sprintf("DROP %s %s", keyword, name)); err != nil {
			return err
		}
	}

	created, err := db.queryStrings(ctx, tx, queryCreated, typ)
	if err != nil {
		return fmt.Errorf("query created: %w", err)
	}
	for _, createSQL := range created {
		if err = db.exec(ctx, tx, "creating "+string(typ), createSQL); err != nil {
			return err
		}
	}

	changed, err := db.queryChanged(ctx, tx, typ)
	if err != nil {
		return fmt.Errorf("query changed: %w", err)
	}
	for _, c := range changed {
		if err = db.exec(ctx, tx, "dropping changed "+string(typ), fmt.Sprintf("DROP %s %s", keyword, c.name)); err != nil {
			return err
		}
		if err = db.exec(ctx, tx, "recreating changed "+string(typ), c.newSQL); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s %q: %w", msg, query, err)
	}
	return nil
}

// queryStrings returns the single column result of query.
func (db *Database) queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) (_ []string, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (db *Database) queryChanged(ctx context.Context, tx *sql.Tx, typ schemaType) (_ []changedSchema, err error) {
	rows, err := tx.QueryContext(ctx, queryChanged, typ)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var results []changedSchema
	for rows.Next() {
		var c changedSchema
		if err = rows.Scan(&c.name, &c.liveSQL, &c.newSQL); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}
