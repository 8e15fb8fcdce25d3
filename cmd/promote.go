package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/evdemand/infra/logger"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote the best evaluated candidate to production",
	RunE:  runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	st, err := svc.RunPromotion(ctx)
	if err != nil {
		return err
	}
	if st.Production != nil {
		logger.New("main").Infof("promoted %s (mae=%.4f)", st.Production.ModelName, st.Production.Metrics.MAE)
	}
	return nil
}
