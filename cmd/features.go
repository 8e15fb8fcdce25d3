package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/evdemand/infra/logger"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Clean the raw sessions and derive the hourly feature table",
	RunE:  runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	st, err := svc.RunFeatures(ctx)
	if err != nil {
		return err
	}
	logger.New("main").Infof("derived %d feature rows to %s", len(st.Features), st.FeaturesPath)
	return nil
}
