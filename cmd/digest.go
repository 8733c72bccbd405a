package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Dispatch the digest to every recipient once and exit",
	Run: func(_ *cobra.Command, _ []string) {
		runDigest()
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest() {
	ctx := context.Background()

	svc := bootstrap(ctx)
	defer svc.close()

	svc.logger.Info("starting one-shot digest dispatch", zap.String("version", version))

	if err := svc.dispatcher.Run(ctx); err != nil {
		svc.logger.Fatal("digest run failed", zap.Error(err))
	}
}
