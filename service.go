package confguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// CheckService validates configuration files and optionally records each
// run in a RunRepo.
type CheckService struct {
	fs   afero.Fs
	repo RunRepo
}

// NewCheckService creates a CheckService. repo may be nil to disable history.
func NewCheckService(fs afero.Fs, repo RunRepo) (*CheckService, error) {
	if fs == nil {
		return nil, errors.New("new check service: filesystem is required")
	}
	return &CheckService{fs: fs, repo: repo}, nil
}

// HistoryEnabled reports whether runs are recorded.
func (s *CheckService) HistoryEnabled() bool {
	return s.repo != nil
}

// Check resolves path (falling back to CONFIG_PATH), validates the file and
// records the run when history is enabled.
//
// Returns ErrConfigPathNotSet when no path is available. A report is
// returned even when recording fails.
func (s *CheckService) Check(ctx context.Context, path string) (Report, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return Report{}, fmt.Errorf("check: %w", err)
	}

	cfg := Load(s.fs, resolved)
	return s.finish(ctx, resolved, cfg)
}

// CheckBytes validates in-memory content. name is used as the report path.
// Unparsable content validates as an empty configuration, matching Check.
func (s *CheckService) CheckBytes(ctx context.Context, name string, data []byte) (Report, error) {
	cfg, err := Parse(data)
	if err != nil {
		slog.Warn("error parsing config content", "name", name, "err", err)
		cfg = NewConfig()
	}
	return s.finish(ctx, name, cfg)
}

func (s *CheckService) finish(ctx context.Context, path string, cfg *Config) (Report, error) {
	v := NewFromConfig(cfg, WithFs(s.fs))
	report := NewReport(path, v.Check())

	slog.Debug("config validated", "path", path, "valid", report.Valid, "problems", len(report.Problems))

	if s.repo == nil {
		return report, nil
	}

	if err := s.repo.Record(ctx, report.Run()); err != nil {
		return report, fmt.Errorf("check: record run: %w", err)
	}

	return report, nil
}

// History lists recorded runs, newest first.
func (s *CheckService) History(ctx context.Context, q RunQuery) ([]Run, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	runs, err := s.repo.List(ctx, q.Normalize())
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return runs, nil
}

// Run returns a recorded run by ID.
func (s *CheckService) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	if s.repo == nil {
		return Run{}, ErrHistoryDisabled
	}

	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}
