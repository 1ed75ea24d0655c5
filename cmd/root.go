package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentic-research/flowmend/internal/config"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/logger"
)

// app is the state shared by one command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// flagKeys maps config keys to the flag names that set them.
type flagKeys map[string]string

var persistentFlags = flagKeys{
	config.KeyDir:          "dir",
	config.KeyPattern:      "pattern",
	config.KeyEnvelopeKeys: "envelope-key",
	config.KeyLedger:       "ledger",
	config.KeyLogLevel:     "log-level",
	config.KeyLogJSON:      "log-json",
}

// NewRootCmd builds the flowmend command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "flowmend",
		Short: "Repair, verify and flatten a directory of n8n workflow records",
		Long: `flowmend repairs workflow JSON files in place: it fixes trailing garbage,
unwraps {"workflow": {...}} envelopes, fills a missing id or nodes field,
and then verifies the directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Path to a config file (yaml, toml or json)")
	pf.String("dir", config.DefaultDir, "Workflows directory")
	pf.String("pattern", ingest.DefaultPattern, "Glob selecting record files by name")
	pf.StringSlice("envelope-key", nil, "Envelope wrapper key, in priority order (default [workflow])")
	pf.String("ledger", "", "SQLite run ledger path (empty disables recording)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(
		newRepairCmd(a),
		newVerifyCmd(a),
		newCheckCmd(a),
		newFlattenCmd(a),
		newHistoryCmd(a),
		newMCPCmd(a),
	)
	return root
}

// setup binds the flags of the running command, merges the config file and
// resolves the configuration. Binding happens here, not at construction, so
// that two subcommands setting the same key never shadow each other.
func (a *app) setup(cmd *cobra.Command, local flagKeys) (*config.Config, *log.Logger, error) {
	for _, keys := range []flagKeys{persistentFlags, local} {
		for key, name := range keys {
			f := cmd.Flags().Lookup(name)
			if f == nil {
				return nil, nil, fmt.Errorf("flag --%s is not defined", name)
			}
			// An unset flag must not mask the config file or the environment.
			if !f.Changed {
				continue
			}
			if err := a.v.BindPFlag(key, f); err != nil {
				return nil, nil, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON), nil
}

func sampleSeed(cfg *config.Config) uint64 {
	if cfg.SampleSeed != 0 {
		return cfg.SampleSeed
	}
	return rand.Uint64()
}

// Execute runs the root command and exits 1 on any error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
