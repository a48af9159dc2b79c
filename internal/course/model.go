// internal/course/model.go
//
// `courses` and `domains` row models.
//
// Schema reference (2026-10-01)
//
//	CREATE TABLE courses (
//	    id          INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    slug        VARCHAR(128)  NOT NULL UNIQUE,
//	    name        VARCHAR(256)  NOT NULL,
//	    provider    VARCHAR(256)  NOT NULL DEFAULT '',
//	    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
//	CREATE TABLE domains (
//	    id          INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    host        VARCHAR(256)  NOT NULL UNIQUE,
//	    course_id   INT UNSIGNED  NOT NULL REFERENCES courses(id)
//	);
//
// Notes
// -----
//   - One `domains` row per host.  A course may own zero or more hosts.
//   - Both structs are pure data; the resolver never writes them.
package course

import "time"

// Course mirrors one row in the `courses` table.  JSON tags are used when a
// course is pinned into a session.
type Course struct {
	ID        uint64    `db:"id"         json:"id"`
	Slug      string    `db:"slug"       json:"slug"`
	Name      string    `db:"name"       json:"name"`
	Provider  string    `db:"provider"   json:"provider,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Domain mirrors one row in the `domains` table.
type Domain struct {
	ID       uint64 `db:"id"`
	Host     string `db:"host"`
	CourseID uint64 `db:"course_id"`
}
