package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent repair and verify runs recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.setup(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.Ledger == "" {
				return errors.New("no ledger configured (use --ledger or FLOWMEND_LEDGER)")
			}
			l, err := ingest.OpenLedger(cfg.Ledger)
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			runs, err := l.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			report.NewPrinter(cmd.OutOrStdout()).History(runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}
