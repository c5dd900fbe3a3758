package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ErrRunFailed is returned in strict mode when any identifier was aborted or left unmarked.
var ErrRunFailed = errors.New("run finished with failed identifiers")

func newRunCommand(configPath *string) *cobra.Command {
	var (
		date   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every unpublished day of the current month once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			application, cfg, logger, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := application.Close(); cerr != nil {
					logger.Warn("close application", "error", cerr)
				}
			}()

			reference, err := parseReference(date, time.Now().In(cfg.Scheduler.Location()), cfg.Scheduler.Location())
			if err != nil {
				return err
			}

			report, err := application.Run(ctx, reference)
			if err != nil {
				return err
			}
			if strict && report.Failed() {
				return fmt.Errorf("%w: aborted=%d mark_failed=%d", ErrRunFailed, report.Aborted, report.MarkFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (defaults to today in the scheduler timezone)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any identifier fails")
	return cmd
}

func parseReference(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	reference, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", value, err)
	}
	return reference, nil
}
