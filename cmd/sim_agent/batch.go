package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	engineFlags
	jobs int
}

// batchLine is one line of batch output.
type batchLine struct {
	File      string              `json:"file"`
	Record    *types.ParsedRecord `json:"record,omitempty"`
	Narrative string              `json:"narrative,omitempty"`
	Status    parsing.Status      `json:"status,omitempty"`
	Strategy  string              `json:"strategy,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Parse many model responses concurrently",
		Long: `Parses every file with the same engine settings and prints one JSON line per file,
in argument order. Files that fail are reported on their line and counted in the exit status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "Maximum files parsed at once")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions, files []string) error {
	if opts.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", opts.jobs)
	}
	s, err := loadSettings(cmd, root, &opts.engineFlags)
	if err != nil {
		return err
	}

	engine := s.engine()
	lines := make([]batchLine, len(files))

	g, ctx := errgroup.WithContext(contextOf(cmd))
	g.SetLimit(opts.jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines[i] = parseFile(engine, s, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	failed := 0
	for _, line := range lines {
		if line.Error != "" {
			failed++
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	s.logger.Info("batch complete", "files", len(files), "failed", failed, "jobs", opts.jobs)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func parseFile(engine *parsing.Engine, s *settings, file string) batchLine {
	line := batchLine{File: file}
	text, err := os.ReadFile(file)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	res, err := engine.Parse(string(text), s.mode, s.profile)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	line.Record = res.Record
	line.Narrative = res.Narrative
	line.Status = res.Status
	line.Strategy = res.Strategy
	return line
}
