package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/kaldeqca/sex-sim-ai/internal/schemas"
	embedded "github.com/kaldeqca/sex-sim-ai/schemas"
	"github.com/spf13/cobra"
)

func newProfileCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and validate locale profiles",
	}
	cmd.AddCommand(newProfileListCmd(), newProfileShowCmd(root), newProfileValidateCmd())
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in locale profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(locale.Presets(), "\n"))
			return err
		},
	}
}

func newProfileShowCmd(root *rootOptions) *cobra.Command {
	var (
		path   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a locale profile",
		Long: `Prints a built-in profile by name, a profile file given with --profile, or the
configured default when neither is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				profile *locale.Profile
				err     error
			)
			switch {
			case len(args) == 1 && path != "":
				return fmt.Errorf("a profile name and --profile are mutually exclusive")
			case len(args) == 1:
				profile, err = locale.Preset(args[0])
			case path != "":
				profile, err = locale.LoadFile(path)
			default:
				var s *settings
				if s, err = loadSettings(cmd, root, nil); err == nil {
					profile = s.profile
				}
			}
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(profile, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal profile: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(profile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "profile", "p", "", "Path to a YAML or JSON locale profile")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")
	return cmd
}

func newProfileValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate locale profile files",
		Long: `Loads each YAML or JSON profile, applies the field rules, and checks the result
against the locale profile JSON Schema.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := validateProfileFile(path); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d profiles are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateProfileFile(path string) error {
	profile, err := locale.LoadFile(path)
	if err != nil {
		return err
	}
	if profile.Rules == nil {
		profile.Rules = []locale.FieldRule{}
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return schemas.ValidateEmbedded(embedded.LocaleProfile, string(data))
}
