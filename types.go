package confguard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of running a rule against a raw value.
type Outcome int

const (
	// Valid means the value satisfies the rule.
	Valid Outcome = iota
	// Invalid means the value was understood but rejected (range, allowed set, pattern).
	Invalid
	// Malformed means the value could not be parsed as the expected primitive.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Kind classifies a detected problem.
type Kind string

const (
	KindMissingSection Kind = "missing_section"
	KindMissingKey     Kind = "missing_key"
	KindInvalidValue   Kind = "invalid_value"
	KindInvalidFormat  Kind = "invalid_format"
	KindUnexpectedKey  Kind = "unexpected_key"
)

// Problem is a single validation finding.
type Problem struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Section string `json:"section" yaml:"section"`
	Key     string `json:"key,omitempty" yaml:"key,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
}

// String renders the problem with its diagnostic template.
func (p Problem) String() string {
	switch p.Kind {
	case KindMissingSection:
		return fmt.Sprintf("Missing '%s' section", p.Section)
	case KindMissingKey:
		return fmt.Sprintf("Missing '%s' in %s", p.Key, p.Section)
	case KindInvalidValue:
		return fmt.Sprintf("Invalid value for '%s' in %s: %s", p.Key, p.Section, p.Value)
	case KindInvalidFormat:
		return fmt.Sprintf("Invalid format for '%s' in %s: %s", p.Key, p.Section, p.Value)
	case KindUnexpectedKey:
		return fmt.Sprintf("Unexpected parameter '%s' in %s", p.Key, p.Section)
	default:
		return fmt.Sprintf("%s: %s %s", p.Kind, p.Section, p.Key)
	}
}

// Messages renders problems in order.
func Messages(problems []Problem) []string {
	msgs := make([]string, 0, len(problems))
	for _, p := range problems {
		msgs = append(msgs, p.String())
	}
	return msgs
}

// Report is the outcome of one validation run.
type Report struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Path      string    `json:"path" yaml:"path"`
	Valid     bool      `json:"valid" yaml:"valid"`
	Errors    []string  `json:"errors" yaml:"errors"`
	Problems  []Problem `json:"problems" yaml:"problems"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
}

// NewReport builds a report for path from detected problems.
func NewReport(path string, problems []Problem) Report {
	if problems == nil {
		problems = []Problem{}
	}
	return Report{
		ID:        uuid.New(),
		Path:      path,
		Valid:     len(problems) == 0,
		Errors:    Messages(problems),
		Problems:  problems,
		CheckedAt: time.Now().UTC(),
	}
}

// Run returns the persisted form of the report.
func (r Report) Run() Run {
	return Run{
		ID:        r.ID,
		Path:      r.Path,
		Valid:     r.Valid,
		Errors:    r.Errors,
		CheckedAt: r.CheckedAt,
	}
}

// Run is a recorded validation run.
type Run struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Path      string    `json:"path" yaml:"path"`
	Valid     bool      `json:"valid" yaml:"valid"`
	Errors    []string  `json:"errors" yaml:"errors"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
}

// RunQuery filters recorded runs.
type RunQuery struct {
	// Path restricts results to runs of exactly this path. Empty means all paths.
	Path  string
	Limit int
}

const (
	DefaultRunLimit = 20
	MaxRunLimit     = 1000
)

// Normalize clamps Limit to [1, MaxRunLimit], using DefaultRunLimit when unset.
func (q RunQuery) Normalize() RunQuery {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultRunLimit
	case q.Limit > MaxRunLimit:
		q.Limit = MaxRunLimit
	}
	return q
}
