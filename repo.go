package confguard

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// RunRepo defines the interface for persisting validation runs.
// Implementations must be safe for concurrent use.
type RunRepo interface {
	// Record stores a run. Runs are never updated.
	Record(ctx context.Context, run Run) error

	// List returns runs newest first, filtered by q.Path when set.
	// q is normalized by the caller.
	List(ctx context.Context, q RunQuery) ([]Run, error)

	// Get returns a run by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Run, error)
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// ValidateTableName checks that the run table name is set and valid.
func ValidateTableName(name string) error {
	if name == "" {
		return errors.New("validate table name: run table name cannot be empty")
	}

	if !IsValidTableName(name) {
		return fmt.Errorf("validate table name: invalid run table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
	}

	return nil
}
