package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mhzhou/ashare-screener/internal/scheduler"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily screening scheduler",
	Long: `Starts the scheduler daemon and registers the daily screening job.

The job runs a full mode-all screening pass after each trading session
closes and exports the result to the configured directory. The schedule
is a cron expression with seconds, configurable via SCHEDULE_SPEC
(default: 15:30 on weekdays).

The scheduler runs until interrupted with Ctrl+C.

Example:
  go run ./cmd/screener schedule`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	sched := scheduler.New(app.logger)

	job := scheduler.NewDailyScreenJob(app.runner, app.cfg.ScheduleSpec, app.cfg.ExportDir, app.logger)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register %s job: %w", job.Name(), err)
	}

	sched.Start()
	PrintSuccess(fmt.Sprintf("Scheduler started, %s scheduled at %q", job.Name(), job.Schedule()))
	PrintInfo("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	fmt.Println()
	PrintInfo(fmt.Sprintf("Received %s, stopping scheduler", sig))
	sched.Stop()

	PrintSuccess("Scheduler stopped")
	return nil
}
