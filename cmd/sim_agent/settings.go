package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/kaldeqca/sex-sim-ai/internal/config"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/spf13/cobra"
)

// engineFlags are shared by every command that runs the parsing engine.
type engineFlags struct {
	mode            string
	locale          string
	profilePath     string
	maxInputBytes   int
	strictStructure bool
	lenientRepair   bool
	numberedOptions bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Game mode: classic or realistic (default: classic)")
	cmd.Flags().StringVarP(&f.locale, "locale", "l", "", "Built-in locale profile: en or zh (default: en)")
	cmd.Flags().StringVarP(&f.profilePath, "profile", "p", "", "Path to a YAML or JSON locale profile (overrides --locale)")
	cmd.Flags().IntVar(&f.maxInputBytes, "max-input-bytes", 0, "Reject text larger than this many bytes (default: 1 MiB)")
	cmd.Flags().BoolVar(&f.strictStructure, "strict", false, "Fail instead of degrading when a structured block cannot be parsed")
	cmd.Flags().BoolVar(&f.lenientRepair, "lenient", false, "Try a general-purpose JSON repairer after structural repair")
	cmd.Flags().BoolVar(&f.numberedOptions, "numbered-options", false, "Recover options from a numbered list in the prose")
}

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg     config.Config
	mode    types.Mode
	profile *locale.Profile
	logger  *slog.Logger
}

// loadSettings merges, highest priority first: flags, the --config file,
// environment variables, built-in defaults.
func loadSettings(cmd *cobra.Command, root *rootOptions, f *engineFlags) (*settings, error) {
	var cfg config.Config
	if root.configPath != "" {
		loaded, err := config.LoadConfig(root.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if f != nil {
		flags := cmd.Flags()
		if flags.Changed("mode") {
			cfg.Mode = f.mode
		}
		// A profile chosen on the command line replaces the config file's choice.
		if flags.Changed("locale") {
			cfg.Locale, cfg.ProfilePath = f.locale, ""
		}
		if flags.Changed("profile") {
			cfg.Locale, cfg.ProfilePath = "", f.profilePath
		}
		if flags.Changed("max-input-bytes") {
			cfg.MaxInputBytes = f.maxInputBytes
		}
		if flags.Changed("strict") {
			cfg.StrictStructure = f.strictStructure
		}
		if flags.Changed("lenient") {
			cfg.LenientRepair = f.lenientRepair
		}
		if flags.Changed("numbered-options") {
			cfg.NumberedOptions = f.numberedOptions
		}
	}
	if root.logLevel != "" {
		cfg.LogLevel = root.logLevel
	}
	if root.logFormat != "" {
		cfg.LogFormat = root.logFormat
	}

	env := config.FromEnv()
	cfg = cfg.MergeWithDefaults(env)
	cfg = cfg.MergeWithDefaults(config.Builtin())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := types.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}

	return &settings{cfg: cfg, mode: mode, profile: profile, logger: logger}, nil
}

func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := observability.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(w, level, observability.LogFormat(cfg.LogFormat)), nil
}

func (s *settings) engine() *parsing.Engine {
	return parsing.New(
		parsing.WithMaxInputBytes(s.cfg.MaxInputBytes),
		parsing.WithStrictStructure(s.cfg.StrictStructure),
		parsing.WithLenientRepair(s.cfg.LenientRepair),
		parsing.WithNumberedOptions(s.cfg.NumberedOptions),
		parsing.WithLogger(s.logger),
	)
}
