// Package cli holds the cobra command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"quizfeed/internal/app"
	"quizfeed/internal/config"
	"quizfeed/internal/logging"
)

// NewRootCommand builds the quizfeed command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "quizfeed",
		Short:         "Publish daily current-affairs quizzes as translated articles",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (defaults to $QUIZFEED_CONFIG)")

	root.AddCommand(
		newRunCommand(&configPath),
		newScheduleCommand(&configPath),
	)
	return root
}

// bootstrap loads configuration, builds the logger and connects the application.
func bootstrap(ctx context.Context, configPath string) (*app.Application, config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Logging)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, logger, err
	}
	return application, cfg, logger, nil
}
