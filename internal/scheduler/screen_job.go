package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/internal/screening"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// DailyScreenJob refreshes the qualified universe after the close and runs
// a full classification pass, exporting the result as CSV.
type DailyScreenJob struct {
	runner    *screening.Runner
	schedule  string
	exportDir string
	logger    *logger.Logger
}

// NewDailyScreenJob creates the daily screening job.
func NewDailyScreenJob(runner *screening.Runner, schedule, exportDir string, log *logger.Logger) *DailyScreenJob {
	return &DailyScreenJob{
		runner:    runner,
		schedule:  schedule,
		exportDir: exportDir,
		logger:    log,
	}
}

// Name implements Job.
func (j *DailyScreenJob) Name() string { return "daily-screen" }

// Schedule implements Job.
func (j *DailyScreenJob) Schedule() string { return j.schedule }

// Run implements Job.
func (j *DailyScreenJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	result, err := j.runner.Screen(ctx, contracts.ModeAll, "", func(p contracts.Progress) {
		j.logger.WithFields(map[string]interface{}{
			"batch":   p.Batch,
			"total":   p.TotalBatches,
			"percent": fmt.Sprintf("%.1f", p.Percent),
		}).Info("Screening progress")
	})
	if err != nil {
		return fmt.Errorf("daily screen: %w", err)
	}

	if _, err := j.runner.ExportToFile(result, j.exportDir); err != nil {
		return fmt.Errorf("daily screen export: %w", err)
	}

	return nil
}
