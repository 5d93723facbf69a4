package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/kaldeqca/sex-sim-ai/internal/schemas"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
	"github.com/spf13/cobra"
)

type parseOptions struct {
	engineFlags
	output  string
	verbose bool
	schema  bool
	record  bool
}

func newParseCmd(root *rootOptions) *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse one model response into a record",
		Long: `Reads a model response from a file, or from stdin when the file is omitted or "-",
and prints the parse result as JSON: the record, the narrative around the structured
block, the status (parsed, repaired, no_structure, unrepairable) and the strategy used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	cmd.Flags().BoolVar(&opts.schema, "schema", false, "Check the record against the parsed record JSON Schema")
	cmd.Flags().BoolVar(&opts.record, "record-only", false, "Print only the record, not the full result")
	return cmd
}

func runParse(cmd *cobra.Command, root *rootOptions, opts *parseOptions, args []string) error {
	s, err := loadSettings(cmd, root, &opts.engineFlags)
	if err != nil {
		return err
	}

	var text []byte
	if len(args) == 0 || args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	engine := s.engine()
	res, err := engine.Parse(string(text), s.mode, s.profile)
	if err != nil {
		var short *validation.ContentTooShortError
		if opts.verbose && errors.As(err, &short) {
			// List every failing rule, not only the first.
			if _, violations, checkErr := engine.Check(string(text), s.mode, s.profile); checkErr == nil {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintViolations(s.mode, violations)
			}
		}
		return err
	}

	if opts.verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResult(res)
	}

	if opts.schema {
		if err := schemas.ValidateRecord(res.Record); err != nil {
			return fmt.Errorf("record does not match schema: %w", err)
		}
	}

	var payload any = res
	if opts.record {
		payload = res.Record
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if opts.output != "" {
		if err := os.WriteFile(opts.output, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
