// internal/course/repository.go
//
// Read-only query helpers for the course tables.
//
// Context
// -------
// The tenant resolver needs three answers from the control-plane database:
//
//   - `ByHost`      – which course owns this hostname?
//   - `ByID`        – load one course for explicit contextualisation.
//   - `SchemaReady` – do the tables exist at all?
//
// Each helper executes exactly one parameterised SELECT.  Driver errors
// that mean "table does not exist" are folded into ErrSchemaNotReady so
// callers never have to know about MySQL error numbers.
package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Tables the resolver depends on.  SchemaReady requires all of them.
var Tables = []string{"courses", "domains"}

// Repository reads courses and domain mappings.  Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open control-plane pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ByHost returns the course mapped to host.  Host must already be
// normalised by the caller.
func (r *Repository) ByHost(ctx context.Context, host string) (*Course, error) {
	const q = `
        SELECT c.id, c.slug, c.name, c.provider, c.created_at, c.updated_at
        FROM   domains d
        JOIN   courses c ON c.id = d.course_id
        WHERE  d.host = ?
        LIMIT  1`

	var c Course
	if err := r.db.GetContext(ctx, &c, q, host); err != nil {
		return nil, classify(err, "host", host)
	}
	return &c, nil
}

// ByID returns a single course by primary key.
func (r *Repository) ByID(ctx context.Context, id uint64) (*Course, error) {
	const q = `
        SELECT id, slug, name, provider, created_at, updated_at
        FROM   courses
        WHERE  id = ?
        LIMIT  1`

	var c Course
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, classify(err, "id", id)
	}
	return &c, nil
}

// Domains lists every host mapped to courseID, ordered by host.
func (r *Repository) Domains(ctx context.Context, courseID uint64) ([]Domain, error) {
	const q = `
        SELECT id, host, course_id
        FROM   domains
        WHERE  course_id = ?
        ORDER  BY host`

	rows := make([]Domain, 0, 2)
	if err := r.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, classify(err, "course_id", courseID)
	}
	return rows, nil
}

// SchemaReady reports whether every table in Tables exists in the current
// database.  It checks structure only, not whether any rows are present.
func (r *Repository) SchemaReady(ctx context.Context) (bool, error) {
	q, args, err := sqlx.In(`
        SELECT COUNT(*)
        FROM   information_schema.tables
        WHERE  table_schema = DATABASE()
          AND  table_name IN (?)`, Tables)
	if err != nil {
		return false, err
	}

	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), args...); err != nil {
		return false, fmt.Errorf("course: schema probe: %w", err)
	}
	return n == len(Tables), nil
}

// classify maps driver errors onto the package sentinels.
func classify(err error, key string, val any) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUnknownTable(err):
		return fmt.Errorf("%w: %v", ErrSchemaNotReady, err)
	default:
		return fmt.Errorf("course: lookup by %s=%v: %w", key, val, err)
	}
}

// isUnknownTable recognises MySQL/MariaDB error 1146 and Postgres 42P01
// "table does not exist" errors.
func isUnknownTable(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1146
	}
	msg := err.Error()
	return strings.Contains(msg, "1146") || strings.Contains(msg, "42P01")
}
