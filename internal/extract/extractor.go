// Package extract distills structured scheduling intent from free-form
// request text. An ordered chain of strategies is tried in sequence: three
// model-backed parses of decreasing strictness, a rule-based parser over the
// original text, and a fixed emergency default. The first success wins; the
// default cannot fail, so extraction always yields a usable intent.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/meeting-coordinator/internal/application"
)

// Completer produces a raw text completion for a prompt. The llm package's
// client satisfies this; tests substitute canned completions.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Strategy is one extraction attempt. It either returns a fully populated
// intent or fails explicitly; a failure advances the chain, never retries.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, text string) (application.ExtractedIntent, error)
}

// Config bounds and defaults applied to every extracted intent.
type Config struct {
	// DefaultDurationMinutes is used when no duration can be extracted.
	DefaultDurationMinutes int
	// MinDurationMinutes and MaxDurationMinutes clamp extracted durations;
	// out-of-range values fall back to the default.
	MinDurationMinutes int
	MaxDurationMinutes int
	// DefaultDomain is appended to bare participant names, "@" included.
	DefaultDomain string
}

func (cfg Config) withDefaults() Config {
	if cfg.DefaultDurationMinutes <= 0 {
		cfg.DefaultDurationMinutes = 30
	}
	if cfg.MinDurationMinutes <= 0 {
		cfg.MinDurationMinutes = 15
	}
	if cfg.MaxDurationMinutes <= cfg.MinDurationMinutes {
		cfg.MaxDurationMinutes = 480
	}
	if cfg.DefaultDomain == "" {
		cfg.DefaultDomain = "@example.com"
	}
	return cfg
}

// Extractor walks the strategy chain for each request. It is safe for
// concurrent use; all mutable state lives in the completer's cache.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewExtractor assembles the standard strategy chain. A nil completer skips
// the model-backed strategies and starts at the rule-based parser.
func NewExtractor(completer Completer, cfg Config) *Extractor {
	return NewExtractorWithLogger(completer, cfg, nil)
}

// NewExtractorWithLogger assembles the standard chain with a base logger.
func NewExtractorWithLogger(completer Completer, cfg Config, logger *slog.Logger) *Extractor {
	cfg = cfg.withDefaults()

	strategies := make([]Strategy, 0, 5)
	if completer != nil {
		strategies = append(strategies,
			&llmStrict{completer: completer, cfg: cfg},
			&llmTolerant{completer: completer, cfg: cfg},
			&llmFields{completer: completer, cfg: cfg},
		)
	}
	strategies = append(strategies,
		&ruleBased{cfg: cfg},
		&emergencyDefault{cfg: cfg},
	)

	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// NewExtractorWithStrategies builds an extractor over an explicit chain.
// The last strategy must be infallible.
func NewExtractorWithStrategies(strategies []Strategy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract runs the chain and returns the first successful intent. Strategy
// failures are recorded as diagnostics on the returned intent; they never
// surface as errors because the emergency default always succeeds.
func (e *Extractor) Extract(ctx context.Context, text string) application.ExtractedIntent {
	var diagnostics []string

	for _, strategy := range e.strategies {
		intent, err := strategy.Attempt(ctx, text)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("%s: %v", strategy.Name(), err))
			e.logger.DebugContext(ctx, "extraction strategy failed",
				"strategy", strategy.Name(),
				"error", err,
			)
			continue
		}

		intent.Diagnostics = append(diagnostics, intent.Diagnostics...)
		e.logger.InfoContext(ctx, "intent extracted",
			"strategy", strategy.Name(),
			"duration_minutes", intent.DurationMinutes,
			"participants", len(intent.Participants),
			"day_constraint", intent.DayConstraint,
		)
		return intent
	}

	// Unreachable with the standard chain; kept for custom chains that
	// violate the infallible-tail contract.
	return application.ExtractedIntent{
		DurationMinutes: 30,
		Topic:           "Meeting",
		Priority:        application.PriorityNormal,
		Provenance:      application.ProvenanceEmergencyDefault,
		Diagnostics:     append(diagnostics, "all extraction strategies failed"),
	}
}
