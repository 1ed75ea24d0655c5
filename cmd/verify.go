package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/internal/config"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every record (or a random sample) without modifying anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(cmd, flagKeys{
				config.KeyVerifySample: "sample",
				config.KeySampleSeed:   "seed",
			})
			if err != nil {
				return err
			}
			started := time.Now()

			fsys, err := ingest.Open(cfg.Dir)
			if err != nil {
				return err
			}
			ver, err := verifyDir(cmd.Context(), fsys, cfg, logger)
			if err != nil {
				return err
			}
			report.NewPrinter(cmd.OutOrStdout()).Verification(ver)

			if cfg.Ledger != "" {
				if err := recordVerify(cmd, cfg, started, ver); err != nil {
					logger.Error("ledger write failed", "ledger", cfg.Ledger, "err", err)
				}
			}
			if ver.Invalid > 0 {
				return fmt.Errorf("verification found %d invalid record(s)", ver.Invalid)
			}
			return nil
		},
	}
	cmd.Flags().Int("sample", 0, fmt.Sprintf("Check a random sample of N files, at most %d (0 = all)", ingest.MaxSample))
	cmd.Flags().Uint64("seed", 0, "Seed for the sample (0 = random)")
	return cmd
}

func recordVerify(cmd *cobra.Command, cfg *config.Config, started time.Time, ver report.Verification) error {
	l, err := ingest.OpenLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()
	_, err = l.RecordVerify(cmd.Context(), ingest.Run{
		Command: "verify", Dir: cfg.Dir, StartedAt: started, Total: ver.Checked, Failed: ver.Invalid,
	}, ver.Problems)
	return err
}
