package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/internal/control"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

func newFlattenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten",
		Short: "Move records out of subdirectories into the workflows directory",
		Long: `flatten moves every record found below a subdirectory to the root of the
workflows directory and removes directories left empty. If any moved name
would collide with an existing record, every conflict is listed and nothing
is moved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(cmd, nil)
			if err != nil {
				return err
			}
			fsys, err := ingest.Open(cfg.Dir)
			if err != nil {
				return err
			}
			lock, err := control.Acquire(cfg.Dir)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			printer := report.NewPrinter(cmd.OutOrStdout())
			res, err := ingest.Flatten(fsys, cfg.Pattern, logger)
			var conflict *ingest.ConflictError
			if errors.As(err, &conflict) {
				printer.Conflicts(conflict)
				return err
			}
			if err != nil {
				return err
			}
			printer.Flatten(res)
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d file(s) could not be moved", len(res.Failed))
			}
			return nil
		},
	}
}
