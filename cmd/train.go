package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/evdemand/infra/logger"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Derive features and train every configured candidate",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	st, err := svc.RunTraining(ctx)
	if err != nil {
		return err
	}
	log := logger.New("main")
	for _, run := range st.Runs {
		log.Infof("trained %s: mae=%.4f rmse=%.4f r2=%.4f", run.ModelName, run.MAE, run.RMSE, run.R2)
	}
	return nil
}
