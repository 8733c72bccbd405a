package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobcompass/internal/scheduler"
)

const defaultDigestSchedule = "0 9 * * *"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digest service with its cron schedule",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run starts the long-running service: the digest dispatch on a cron
// schedule, stopped by SIGINT or SIGTERM.
func run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := bootstrap(ctx)
	defer svc.close()

	svc.logger.Info("starting the jobcompass service", zap.String("version", version))

	schedule := defaultDigestSchedule
	if svc.config.Digest != nil && svc.config.Digest.Schedule != "" {
		schedule = svc.config.Digest.Schedule
	}

	sched := scheduler.New(svc.logger)
	err := sched.AddJob(schedule, "daily-digest", func() {
		if err := svc.dispatcher.Run(ctx); err != nil {
			svc.logger.Error("digest run failed", zap.Error(err))
		}
	})
	if err != nil {
		svc.logger.Fatal("scheduling digest job", zap.Error(err))
	}

	sched.Start()
	svc.logger.Info("digest scheduled", zap.String("schedule", schedule))

	<-ctx.Done()

	svc.logger.Info("shutting down")
	sched.Stop()
}
