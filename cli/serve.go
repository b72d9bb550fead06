package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentskill/logger"
	"agentskill/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.NewService()
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Error("Error during service shutdown", zap.Error(err))
			}
			logger.Sync()
		}()
		return svc.Start()
	},
}
