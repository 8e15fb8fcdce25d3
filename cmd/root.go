// Package cmd defines the command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evdemand/app"
	"github.com/kilianp07/evdemand/config"
	"github.com/kilianp07/evdemand/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "evdemand",
	Short: "EV charging demand pipeline and model registry",
	RunE:  runPipeline,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	st, err := svc.RunPipeline(ctx)
	if err != nil {
		return err
	}
	log := logger.New("main")
	log.Infof("pipeline complete: %d sessions cleaned, %d feature rows, %d runs",
		st.CleanReport.Total, len(st.Features), len(st.Runs))
	if st.Production != nil {
		log.Infof("production model: %s (mae=%.4f)", st.Production.ModelName, st.Production.Metrics.MAE)
	}
	return nil
}
