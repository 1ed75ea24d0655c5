package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/api"
	"github.com/agentic-research/flowmend/internal/config"
	"github.com/agentic-research/flowmend/internal/control"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

func newRepairCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair every record in place, then verify the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(cmd, flagKeys{
				config.KeyStages:       "stages",
				config.KeyBackup:       "backup",
				config.KeyBackupDir:    "backup-dir",
				config.KeyStrictRepair: "strict-repair",
				config.KeyVerifySample: "verify-sample",
				config.KeySampleSeed:   "seed",
			})
			if err != nil {
				return err
			}
			return runRepair(cmd, cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringSlice("stages", []string{ingest.StageRepair, ingest.StageUnwrap, ingest.StageNormalize}, "Pipeline stages to run")
	f.Bool("backup", false, "Snapshot the directory before repairing")
	f.String("backup-dir", "", "Where snapshots go (default <dir>-backup)")
	f.Bool("strict-repair", false, "Refuse truncation repairs that discard JSON-looking text")
	f.Int("verify-sample", 0, "Verify a random sample of N files after repair (0 = all)")
	f.Uint64("seed", 0, "Seed for the verification sample (0 = random)")
	return cmd
}

func runRepair(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) error {
	ctx := cmd.Context()
	started := time.Now()

	fsys, err := ingest.Open(cfg.Dir)
	if err != nil {
		return err
	}
	lock, err := control.Acquire(cfg.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release lock", "err", err)
		}
	}()

	if cfg.Backup {
		dest, err := ingest.Backup(cfg.Dir, cfg.BackupDir, started)
		if err != nil {
			return err
		}
		logger.Info("backup created", "path", dest)
	}

	names, err := ingest.Enumerate(fsys, cfg.Pattern)
	if err != nil {
		return err
	}
	logger.Info("repairing", "dir", cfg.Dir, "files", len(names))

	engine := ingest.NewEngine(fsys, cfg.Stages, cfg.EnvelopeKeys, logger)
	engine.StrictRepair = cfg.StrictRepair
	results, runErr := engine.Run(ctx, names)

	printer := report.NewPrinter(cmd.OutOrStdout())
	summary := report.Fold(results)
	printer.Summary(summary)
	if runErr != nil {
		return fmt.Errorf("repair interrupted after %d of %d files: %w", len(results), len(names), runErr)
	}

	ver, err := verifyDir(ctx, fsys, cfg, logger)
	if err != nil {
		return err
	}
	printer.Verification(ver)

	if cfg.Ledger != "" {
		if err := recordRepair(ctx, cfg, started, summary, results, ver); err != nil {
			logger.Error("ledger write failed", "ledger", cfg.Ledger, "err", err)
		}
	}

	if ver.Invalid > 0 {
		return fmt.Errorf("verification found %d invalid record(s)", ver.Invalid)
	}
	return nil
}

func verifyDir(ctx context.Context, fsys billy.Filesystem, cfg *config.Config, logger *log.Logger) (report.Verification, error) {
	v := &ingest.Verifier{
		FS:           fsys,
		Pattern:      cfg.Pattern,
		EnvelopeKeys: cfg.EnvelopeKeys,
		Sample:       cfg.VerifySample,
		Seed:         sampleSeed(cfg),
		Log:          logger,
	}
	raw, err := v.Run(ctx)
	if err != nil {
		return report.Verification{}, fmt.Errorf("verify: %w", err)
	}
	return report.FoldVerification(raw), nil
}

func recordRepair(ctx context.Context, cfg *config.Config, started time.Time, s report.Summary, results []api.Result, ver report.Verification) error {
	l, err := ingest.OpenLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	if _, err := l.RecordRepair(ctx, ingest.Run{
		Command: "repair", Dir: cfg.Dir, StartedAt: started, Total: s.Total, Failed: s.Errors,
	}, results); err != nil {
		return err
	}
	_, err = l.RecordVerify(ctx, ingest.Run{
		Command: "verify", Dir: cfg.Dir, StartedAt: time.Now(), Total: ver.Checked, Failed: ver.Invalid,
	}, ver.Problems)
	return err
}
