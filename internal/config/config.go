// Package config resolves flowmend settings from defaults, an optional
// config file, FLOWMEND_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/record"
)

// EnvPrefix namespaces environment overrides, e.g. FLOWMEND_VERIFY_SAMPLE.
const EnvPrefix = "FLOWMEND"

// Keys.
const (
	KeyDir          = "dir"
	KeyPattern      = "pattern"
	KeyEnvelopeKeys = "envelope_keys"
	KeyStages       = "stages"
	KeyBackup       = "backup"
	KeyBackupDir    = "backup_dir"
	KeyStrictRepair = "strict_repair"
	KeyVerifySample = "verify_sample"
	KeySampleSeed   = "sample_seed"
	KeyLedger       = "ledger"
	KeyLogLevel     = "log_level"
	KeyLogJSON      = "log_json"
)

const DefaultDir = "public/workflows"

type Config struct {
	Dir          string
	Pattern      string
	EnvelopeKeys []string
	Stages       ingest.Stages
	// Backup snapshots Dir before a repair pass.
	Backup    bool
	BackupDir string
	// StrictRepair refuses truncation repairs that discard JSON-looking text.
	StrictRepair bool
	// VerifySample is 0 for a full post-repair scan, otherwise the sample size.
	VerifySample int
	// SampleSeed fixes the verification sample; 0 picks a random seed.
	SampleSeed uint64
	// Ledger is the SQLite run ledger path; empty disables it.
	Ledger   string
	LogLevel string
	LogJSON  bool
}

// New returns a viper instance carrying the defaults and env binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDir, DefaultDir)
	v.SetDefault(KeyPattern, ingest.DefaultPattern)
	v.SetDefault(KeyEnvelopeKeys, []string{record.DefaultEnvelopeKey})
	v.SetDefault(KeyStages, []string{ingest.StageRepair, ingest.StageUnwrap, ingest.StageNormalize})
	v.SetDefault(KeyBackup, false)
	v.SetDefault(KeyBackupDir, "")
	v.SetDefault(KeyStrictRepair, false)
	v.SetDefault(KeyVerifySample, 0)
	v.SetDefault(KeySampleSeed, 0)
	v.SetDefault(KeyLedger, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Dir:          strings.TrimSpace(v.GetString(KeyDir)),
		Pattern:      v.GetString(KeyPattern),
		EnvelopeKeys: splitList(v.GetStringSlice(KeyEnvelopeKeys)),
		Backup:       v.GetBool(KeyBackup),
		BackupDir:    v.GetString(KeyBackupDir),
		StrictRepair: v.GetBool(KeyStrictRepair),
		VerifySample: v.GetInt(KeyVerifySample),
		SampleSeed:   v.GetUint64(KeySampleSeed),
		Ledger:       v.GetString(KeyLedger),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogJSON:      v.GetBool(KeyLogJSON),
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyDir)
	}
	if cfg.Pattern == "" {
		cfg.Pattern = ingest.DefaultPattern
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, fmt.Errorf("%s: invalid glob %q", KeyPattern, cfg.Pattern)
	}
	if len(cfg.EnvelopeKeys) == 0 {
		cfg.EnvelopeKeys = []string{record.DefaultEnvelopeKey}
	}
	stages, err := ingest.ParseStages(splitList(v.GetStringSlice(KeyStages)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyStages, err)
	}
	cfg.Stages = stages
	if cfg.VerifySample < 0 {
		return nil, fmt.Errorf("%s must be >= 0, got %d", KeyVerifySample, cfg.VerifySample)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("%s: unknown level %q", KeyLogLevel, cfg.LogLevel)
	}
	return cfg, nil
}

// splitList accepts both list values and comma-separated strings, which is
// what an environment variable yields.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
