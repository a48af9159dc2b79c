package tenant

import "fmt"

// Origin is the classification of a request host.
type Origin int

const (
	External Origin = iota
	Frontend
	Backend
)

// String returns the lowercase label used in logs, JSON, and metrics.
func (o Origin) String() string {
	switch o {
	case Frontend:
		return "frontend"
	case Backend:
		return "backend"
	default:
		return "external"
	}
}

// MarshalText lets Origin appear as a string in JSON bodies.
func (o Origin) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText accepts the labels produced by String.
func (o *Origin) UnmarshalText(b []byte) error {
	switch string(b) {
	case "frontend":
		*o = Frontend
	case "backend":
		*o = Backend
	case "external":
		*o = External
	default:
		return fmt.Errorf("tenant: unknown origin %q", b)
	}
	return nil
}
