package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

// DefaultMaxRetries is how many times a reply that is too short is regenerated.
const DefaultMaxRetries = 2

type generateOptions struct {
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
}

// GenerateOption configures GenerateRecord.
type GenerateOption func(*generateOptions)

// WithMaxRetries sets how many regenerations follow the first attempt.
func WithMaxRetries(n int) GenerateOption {
	return func(o *generateOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) GenerateOption {
	return func(o *generateOptions) { o.delay = d }
}

// WithGenerateLogger sets the logger for attempt events.
func WithGenerateLogger(logger *slog.Logger) GenerateOption {
	return func(o *generateOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// GenerateRecord asks the model for the next turn and parses the reply. A
// reply whose content is too short is regenerated with a note naming the
// field; any other failure ends the loop.
func GenerateRecord(ctx context.Context, client Client, engine *parsing.Engine, profile *locale.Profile, req StoryRequest, opts ...GenerateOption) (*parsing.Result, error) {
	o := generateOptions{
		maxRetries: DefaultMaxRetries,
		delay:      500 * time.Millisecond,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	prompt, err := NewStoryPrompt(req, profile)
	if err != nil {
		return nil, err
	}
	tier := TierForMode(req.Mode)

	var lastShort *validation.ContentTooShortError
	attempt := 0
	return retry.DoWithData(
		func() (*parsing.Result, error) {
			attempt++
			p := prompt
			if lastShort != nil {
				p += "\n\n" + retryNote(lastShort)
			}

			text, err := client.GenerateContent(ctx, p, tier)
			if err != nil {
				return nil, err
			}

			res, err := engine.Parse(text, req.Mode, profile)
			if err != nil {
				var short *validation.ContentTooShortError
				if errors.As(err, &short) {
					lastShort = short
				}
				return nil, err
			}

			o.logger.Debug("turn generated", "attempt", attempt, "status", string(res.Status), "strategy", res.Strategy)
			return res, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(o.maxRetries+1)),
		retry.Delay(o.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTooShort),
		retry.OnRetry(func(n uint, err error) {
			o.logger.Info("regenerating turn", "attempt", n+1, "error", err)
		}),
	)
}

func isTooShort(err error) bool {
	var short *validation.ContentTooShortError
	return errors.As(err, &short)
}
