package parsing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/repair"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

// DefaultMaxInputBytes bounds the raw text a single Parse call accepts.
const DefaultMaxInputBytes = 1 << 20

// Result is the outcome of one Parse call.
type Result struct {
	Record    *types.ParsedRecord `json:"record"`
	Narrative string              `json:"narrative"`
	Status    Status              `json:"status"`
	Strategy  string              `json:"strategy"`
}

// Engine parses model output. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	maxInputBytes   int
	strictStructure bool
	lenient         bool
	numbered        bool
	strategies      []Strategy
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputBytes overrides DefaultMaxInputBytes. Non-positive values are ignored.
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInputBytes = n
		}
	}
}

// WithStrictStructure makes an unparsable candidate block an *UnrepairableError
// instead of an empty structured payload.
func WithStrictStructure(strict bool) Option {
	return func(e *Engine) { e.strictStructure = strict }
}

// WithLenientRepair adds the general-purpose repairer after structural repair.
func WithLenientRepair(enabled bool) Option {
	return func(e *Engine) { e.lenient = enabled }
}

// WithNumberedOptions adds numbered-list recovery as the last strategy.
func WithNumberedOptions(enabled bool) Option {
	return func(e *Engine) { e.numbered = enabled }
}

// WithLogger sets the debug logger. nil keeps the discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an engine with the strict and structural strategies plus any
// optional ones enabled by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxInputBytes: DefaultMaxInputBytes,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.strategies = []Strategy{StrictStrategy(), StructuralStrategy()}
	if e.lenient {
		e.strategies = append(e.strategies, LenientStrategy())
	}
	if e.numbered {
		e.strategies = append(e.strategies, NumberedOptionsStrategy())
	}
	return e
}

// Strategies returns the names of the configured strategies in order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name
	}
	return names
}

// Parse extracts, repairs, assembles and validates raw. Missing or broken
// structure degrades to defaults; only contract violations and content that is
// too short are returned as errors.
func (e *Engine) Parse(raw string, mode types.Mode, profile *locale.Profile) (*Result, error) {
	res, log, err := e.assemble(raw, mode, profile)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateContent(res.Record, mode, profile); err != nil {
		var short *validation.ContentTooShortError
		if errors.As(err, &short) {
			log.Debug("content too short", "field", short.Field, "got", short.Got, "min", short.Min)
		}
		return nil, err
	}
	return res, nil
}

// Check runs Parse without failing on content length and returns every rule
// the record violates.
func (e *Engine) Check(raw string, mode types.Mode, profile *locale.Profile) (*Result, []validation.Violation, error) {
	res, _, err := e.assemble(raw, mode, profile)
	if err != nil {
		return nil, nil, err
	}
	return res, validation.CheckContent(res.Record, mode, profile), nil
}

func (e *Engine) assemble(raw string, mode types.Mode, profile *locale.Profile) (*Result, *slog.Logger, error) {
	if err := e.checkInput(raw, mode, profile); err != nil {
		return nil, nil, err
	}

	outcome := Extract(raw)
	log := e.logger.With("mode", string(mode), "locale", profile.Name)
	if outcome.HasCandidate() {
		log.Debug("structured block located",
			"candidate_bytes", len(*outcome.Candidate),
			"narrative_bytes", len(outcome.Narrative))
	} else {
		log.Debug("no structured block found", "narrative_bytes", len(outcome.Narrative))
	}

	value, strategy, status := e.runStrategies(outcome)
	log.Debug("strategy selected", "strategy", strategy, "status", string(status))

	if status == StatusUnrepairable && strategy == StrategyNone && e.strictStructure {
		return nil, nil, &UnrepairableError{
			Candidate: *outcome.Candidate,
			Repaired:  repair.Repair(*outcome.Candidate).Repaired,
		}
	}

	return &Result{
		Record:    Assemble(value, outcome.Narrative, profile.Placeholder),
		Narrative: outcome.Narrative,
		Status:    status,
		Strategy:  strategy,
	}, log, nil
}

func (e *Engine) runStrategies(outcome types.ExtractionOutcome) (json.RawMessage, string, Status) {
	fallback := StatusNoStructure
	if outcome.HasCandidate() {
		fallback = StatusUnrepairable
	}

	for _, s := range e.strategies {
		value, ok := s.Apply(outcome)
		if !ok {
			continue
		}
		status := s.Status
		if status == "" {
			status = fallback
		}
		return value, s.Name, status
	}
	return nil, StrategyNone, fallback
}

func (e *Engine) checkInput(raw string, mode types.Mode, profile *locale.Profile) error {
	if strings.TrimSpace(raw) == "" {
		return &InvalidInputError{Message: "text is empty"}
	}
	if len(raw) > e.maxInputBytes {
		return &InvalidInputError{Message: fmt.Sprintf("text is %d bytes, limit is %d", len(raw), e.maxInputBytes)}
	}
	if !utf8.ValidString(raw) {
		return &InvalidInputError{Message: "text is not valid UTF-8"}
	}
	if !mode.Valid() {
		return &InvalidInputError{Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	if profile == nil {
		return &InvalidInputError{Message: "locale profile is required"}
	}
	return nil
}
