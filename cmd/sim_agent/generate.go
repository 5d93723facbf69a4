package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaldeqca/sex-sim-ai/internal/llm"
	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/spf13/cobra"
)

// newLLMClient is replaced in tests.
var newLLMClient = llm.NewClient

type generateOptions struct {
	engineFlags
	requestPath     string
	action          string
	apiKey          string
	model           string
	maxRetries      int
	maxOutputTokens int32
	verbose         bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the next story turn with Gemini and parse it",
		Long: `Builds a turn prompt from a story request (character, history and the player's
action), sends it to Gemini and parses the reply. Replies whose content is shorter than
the locale profile requires are regenerated up to --max-retries times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.requestPath, "request", "r", "", "Path to a story request JSON file")
	cmd.Flags().StringVarP(&opts.action, "action", "a", "", "Player action (overrides the request file)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model for this mode's tier (overrides GEMINI_MODEL env var)")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", 0, "Regenerations after a reply that is too short (default: 2)")
	cmd.Flags().Int32Var(&opts.maxOutputTokens, "max-output-tokens", 0, "Cap on reply tokens (default: provider limit)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	s, err := loadSettings(cmd, root, &opts.engineFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-key") {
		s.cfg.APIKey = opts.apiKey
	}
	if cmd.Flags().Changed("model") {
		s.cfg.Model = opts.model
	}
	if cmd.Flags().Changed("max-retries") {
		s.cfg.MaxRetries = opts.maxRetries
	}
	if s.cfg.APIKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	var req llm.StoryRequest
	if opts.requestPath != "" {
		data, err := os.ReadFile(opts.requestPath)
		if err != nil {
			return fmt.Errorf("failed to read request file: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse request JSON: %w", err)
		}
	}
	if opts.action != "" {
		req.Action = opts.action
	}
	if req.Action == "" {
		return fmt.Errorf("an action is required (use --action or set \"action\" in --request)")
	}
	// The request file may name a mode; the resolved setting wins when given explicitly.
	if req.Mode == "" || cmd.Flags().Changed("mode") {
		req.Mode = s.mode
	}

	llmCfg := llm.DefaultConfig()
	if s.cfg.Model != "" {
		llmCfg = llmCfg.WithModel(llm.TierForMode(req.Mode), s.cfg.Model)
	}
	llmCfg.MaxOutputTokens = opts.maxOutputTokens

	ctx := contextOf(cmd)
	client, err := newLLMClient(ctx, llmCfg, s.cfg.APIKey)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	res, err := llm.GenerateRecord(ctx, client, s.engine(), s.profile, req,
		llm.WithMaxRetries(s.cfg.MaxRetries),
		llm.WithGenerateLogger(s.logger))
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if opts.verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResult(res)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
