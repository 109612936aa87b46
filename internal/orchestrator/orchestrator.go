// Package orchestrator drives a word list through the dictionary checker one
// word at a time and collects the words that survive.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
	"github.com/Tispy-Bacon/wordfilter/internal/ratelimit"
)

// ErrLookupAborted is returned when the abort policy meets a failed lookup.
var ErrLookupAborted = errors.New("lookup failed")

// Recorder receives every classified word. Recording errors are logged and
// never stop a run.
type Recorder interface {
	SaveLookup(ctx context.Context, runID string, index int, res dictionary.Result, kept bool) error
}

type OrchestratorConfig struct {
	Policy   dictionary.Policy
	RunID    string
	Recorder Recorder
}

type OrchestratorResult struct {
	// Words is the filtered list in input order.
	Words     []string
	Total     int
	Defined   int
	Undefined int
	Failed    int
}

// Summary renders the end-of-run line.
func (r *OrchestratorResult) Summary() string {
	s := fmt.Sprintf("%d out of %d words have definitions.", r.Defined, r.Total)
	if r.Failed > 0 {
		s += fmt.Sprintf(" %d lookups failed.", r.Failed)
	}
	return s
}

type Orchestrator struct {
	checker dictionary.WordChecker
	gate    ratelimit.Gate
	config  OrchestratorConfig
	logger  logrus.FieldLogger
}

func New(checker dictionary.WordChecker, gate ratelimit.Gate, config OrchestratorConfig, logger logrus.FieldLogger) *Orchestrator {
	if gate == nil {
		gate = ratelimit.None{}
	}
	if config.Policy == "" {
		config.Policy = dictionary.PolicyDrop
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Orchestrator{
		checker: checker,
		gate:    gate,
		config:  config,
		logger:  logger,
	}
}

// Execute checks words strictly in order, waiting on the gate after every
// lookup. Only cancellation, a gate failure or the abort policy end a run
// early; in that case no result is returned.
func (o *Orchestrator) Execute(ctx context.Context, words []string) (*OrchestratorResult, error) {
	result := &OrchestratorResult{
		Words: make([]string, 0, len(words)),
		Total: len(words),
	}

	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := o.checker.CheckWord(ctx, word)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kept := o.config.Policy.Keeps(res)
		switch res.Outcome {
		case dictionary.OutcomeDefined:
			result.Defined++
		case dictionary.OutcomeError:
			result.Failed++
		default:
			result.Undefined++
		}
		if kept {
			result.Words = append(result.Words, word)
		}

		o.logProgress(i, len(words), res, kept)
		o.record(ctx, i, res, kept)

		if res.Outcome == dictionary.OutcomeError && o.config.Policy == dictionary.PolicyAbort {
			return nil, fmt.Errorf("%w for %q: %s", ErrLookupAborted, word, res.Reason)
		}

		if err := o.gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	return result, nil
}

func (o *Orchestrator) logProgress(i, total int, res dictionary.Result, kept bool) {
	entry := o.logger.WithFields(logrus.Fields{
		"index":   i + 1,
		"total":   total,
		"word":    res.Word,
		"outcome": res.Outcome.String(),
	})

	switch {
	case res.Outcome == dictionary.OutcomeDefined:
		entry.Infof("(%d/%d) SUCCESS: %q has a definition", i+1, total, res.Word)
	case res.Outcome == dictionary.OutcomeError && kept:
		entry.Infof("(%d/%d) KEPT: %q could not be checked", i+1, total, res.Word)
	case res.Outcome == dictionary.OutcomeError:
		entry.Infof("(%d/%d) FAILED: %q could not be checked", i+1, total, res.Word)
	default:
		entry.Infof("(%d/%d) FAILED: %q has no definition", i+1, total, res.Word)
	}
}

func (o *Orchestrator) record(ctx context.Context, i int, res dictionary.Result, kept bool) {
	if o.config.Recorder == nil {
		return
	}
	if err := o.config.Recorder.SaveLookup(ctx, o.config.RunID, i, res, kept); err != nil {
		o.logger.WithError(err).WithField("word", res.Word).Warn("failed to record lookup")
	}
}
