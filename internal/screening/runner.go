package screening

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// UniverseSource supplies the qualified candidate set.
// *universe.Service satisfies it.
type UniverseSource interface {
	QualifiedUniverse(ctx context.Context) ([]contracts.Candidate, error)
}

// Runner is the entry point shared by the CLI, the API and the scheduler:
// qualified universe in, classified result table out, optionally persisted.
type Runner struct {
	universe     UniverseSource
	orchestrator *Orchestrator
	repository   *Repository // nil when run history is disabled
	logger       *logger.Logger
}

// NewRunner creates a runner. repository may be nil.
func NewRunner(universe UniverseSource, orchestrator *Orchestrator, repository *Repository, log *logger.Logger) *Runner {
	return &Runner{
		universe:     universe,
		orchestrator: orchestrator,
		repository:   repository,
		logger:       log,
	}
}

// Universe returns the qualified candidate set.
func (r *Runner) Universe(ctx context.Context) ([]contracts.Candidate, error) {
	return r.universe.QualifiedUniverse(ctx)
}

// Screen builds the qualified universe and runs one classification pass.
func (r *Runner) Screen(ctx context.Context, mode contracts.Mode, board string, onProgress ProgressFunc) (*contracts.RunResult, error) {
	candidates, err := r.universe.QualifiedUniverse(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.orchestrator.Run(ctx, candidates, mode, board, onProgress)
	if err != nil {
		return nil, err
	}

	if r.repository != nil {
		if err := r.repository.SaveRun(ctx, result); err != nil {
			// Run history is best effort; the result set already exists.
			r.logger.WithError(err).Warn("Failed to persist screening run")
		}
	}

	return result, nil
}

// ExportToFile writes the result as CSV into dir, creating it as needed,
// and returns the written path.
func (r *Runner) ExportToFile(result *contracts.RunResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(result))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	r.logger.WithField("path", path).Info("Exported screening result")
	return path, nil
}
