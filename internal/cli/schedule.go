package cli

import (
	"github.com/spf13/cobra"
)

func newScheduleCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron expression and serve /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, logger, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := application.Close(); cerr != nil {
					logger.Warn("close application", "error", cerr)
				}
			}()

			return application.Schedule(cmd.Context())
		},
	}
}
