// internal/course/repository_test.go
//
// Unit-tests for the course query helpers using sqlmock.
//
// Run: go test ./internal/course -v

package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var courseCols = []string{"id", "slug", "name", "provider", "created_at", "updated_at"}

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "mysql")), mock
}

func TestByHost_Found(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM\s+domains d\s+JOIN\s+courses c ON c.id = d.course_id\s+WHERE\s+d.host = \?`).
		WithArgs("courses.acme.com").
		WillReturnRows(sqlmock.NewRows(courseCols).
			AddRow(7, "acme", "Acme Academy", "acme", now, now))

	got, err := repo.ByHost(context.Background(), "courses.acme.com")
	if err != nil {
		t.Fatalf("ByHost error: %v", err)
	}
	if got.ID != 7 || got.Slug != "acme" || got.Name != "Acme Academy" {
		t.Fatalf("unexpected course: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByHost_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM\s+domains d`).
		WithArgs("random.biz").
		WillReturnRows(sqlmock.NewRows(courseCols))

	_, err := repo.ByHost(context.Background(), "random.biz")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestByHost_UnknownTable(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM\s+domains d`).
		WithArgs("courses.acme.com").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'app.domains' doesn't exist"})

	_, err := repo.ByHost(context.Background(), "courses.acme.com")
	if !errors.Is(err, ErrSchemaNotReady) {
		t.Fatalf("err = %v, want ErrSchemaNotReady", err)
	}
}

func TestByHost_PostgresUnknownTable(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM\s+domains d`).
		WithArgs("courses.acme.com").
		WillReturnError(errors.New(`ERROR: relation "domains" does not exist (SQLSTATE 42P01)`))

	_, err := repo.ByHost(context.Background(), "courses.acme.com")
	if !errors.Is(err, ErrSchemaNotReady) {
		t.Fatalf("err = %v, want ErrSchemaNotReady", err)
	}
}

func TestByHost_OtherError(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`FROM\s+domains d`).
		WithArgs("courses.acme.com").
		WillReturnError(boom)

	_, err := repo.ByHost(context.Background(), "courses.acme.com")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSchemaNotReady) {
		t.Fatalf("generic error misclassified: %v", err)
	}
}

func TestByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM\s+courses\s+WHERE\s+id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(courseCols).
			AddRow(3, "go", "Go in Practice", "", now, now))

	got, err := repo.ByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("ByID error: %v", err)
	}
	if got.Slug != "go" {
		t.Fatalf("slug = %q, want go", got.Slug)
	}
}

func TestDomains(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM\s+domains\s+WHERE\s+course_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "host", "course_id"}).
			AddRow(1, "acme.com", 7).
			AddRow(2, "courses.acme.com", 7))

	got, err := repo.Domains(context.Background(), 7)
	if err != nil {
		t.Fatalf("Domains error: %v", err)
	}
	if len(got) != 2 || got[1].Host != "courses.acme.com" {
		t.Fatalf("unexpected domains: %#v", got)
	}
}

func TestSchemaReady(t *testing.T) {
	cases := []struct {
		name  string
		count int
		want  bool
	}{
		{"all tables", 2, true},
		{"one missing", 1, false},
		{"fresh install", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectQuery(`FROM\s+information_schema.tables`).
				WithArgs("courses", "domains").
				WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(tc.count))

			got, err := repo.SchemaReady(context.Background())
			if err != nil {
				t.Fatalf("SchemaReady error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ready = %v, want %v", got, tc.want)
			}
		})
	}
}
