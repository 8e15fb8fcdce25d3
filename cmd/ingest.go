package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/evdemand/infra/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load and clean the raw session export",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	st, err := svc.RunIngest(ctx)
	if err != nil {
		return err
	}
	rep := st.CleanReport
	logger.New("main").Infof("cleaned %d sessions (%d imputed, %d reconciled, %d excluded) to %s",
		rep.Total-rep.Excluded, rep.Imputed, rep.Reconciled, rep.Excluded, st.CleanPath)
	return nil
}
