package tenant

import "errors"

var (
	// ErrNoSession is returned by Contextualize when the request carries no
	// session to pin the course into.
	ErrNoSession = errors.New("tenant: no session")

	// ErrNilCourse is returned by Contextualize when called without a course.
	ErrNilCourse = errors.New("tenant: nil course")

	// ErrNoContext is reported by guards when Middleware did not run.
	ErrNoContext = errors.New("tenant: no resolver context")
)
