// Package pipeline runs a build end to end: it selects the capability for
// an intent, asks an untrusted generator for a specification, passes every
// candidate through the trust boundary gate with bounded retries, and
// plans the approved result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/gate"
	"github.com/ariel-frischer/specgate/internal/generator"
	"github.com/ariel-frischer/specgate/internal/plan"
	"github.com/ariel-frischer/specgate/internal/registry"
	"github.com/ariel-frischer/specgate/internal/retry"
)

// Options bound generation retries.
type Options struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// OnAttempt, when set, is called before each generation attempt.
	OnAttempt func(attempt int)
}

// Pipeline wires the stages together. It is safe for concurrent use when
// its generator is.
type Pipeline struct {
	registry  *registry.Registry
	generator generator.Generator
	gate      *gate.Gate
	builder   *plan.Builder
	opts      Options
	logger    *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(reg *registry.Registry, gen generator.Generator, g *gate.Gate, builder *plan.Builder, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		registry:  reg,
		generator: gen,
		gate:      g,
		builder:   builder,
		opts:      opts,
		logger:    logger,
	}
}

// Request is one build request.
type Request struct {
	Intent contract.Intent
	// Strategy defaults to plan.Deterministic.
	Strategy plan.IDStrategy
}

// Result is the outcome of a run. Plan is set only when the verdict
// approved the candidate.
type Result struct {
	Capability *contract.Capability    `json:"capability"`
	Verdict    *gate.Verdict           `json:"verdict"`
	Plan       *contract.ExecutionPlan `json:"plan,omitempty"`
	Attempts   int                     `json:"attempts"`
}

// Run executes the pipeline. A rejected candidate is reported through
// Result.Verdict with a nil error. Errors are returned for cancellation,
// unknown capabilities, generators that cannot run at all, exhausted
// retries (alongside a reject verdict) and planning failures.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capability, err := p.registry.ForIntent(req.Intent)
	if err != nil {
		return nil, err
	}
	result := &Result{Capability: capability}

	log := p.logger.With(
		zap.String("capability", capability.CapabilityID),
		zap.String("generator", p.generator.Name()))

	var feedback []contract.Issue
	policy := retry.Policy{
		MaxRetries:     p.opts.MaxRetries,
		InitialBackoff: p.opts.InitialBackoff,
		MaxBackoff:     p.opts.MaxBackoff,
		Retryable:      gerrors.IsRetryable,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Warn("retrying generation",
				zap.Int("retry", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}

	err = retry.Do(ctx, capability.CapabilityID, policy, func(ctx context.Context, attempt int) error {
		result.Attempts = attempt
		if p.opts.OnAttempt != nil {
			p.opts.OnAttempt(attempt)
		}

		raw, err := p.generator.Generate(ctx, generator.Request{
			Intent:     req.Intent,
			Capability: capability.Clone(),
			Attempt:    attempt,
			Feedback:   feedback,
		})
		if err != nil {
			return classifyGeneratorError(ctx, err)
		}

		verdict, err := p.gate.Evaluate(ctx, raw, capability)
		if err != nil {
			return err
		}
		result.Verdict = verdict
		if verdict.Decision == gate.Retry {
			feedback = verdict.Errors
			return verdict.Err()
		}
		return nil
	})

	var exhausted *retry.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		ge := gerrors.GenerationExhausted(exhausted.Attempts(), exhausted)
		result.Verdict = gate.Rejected(ge)
		log.Warn("generation exhausted", zap.Int("attempts", exhausted.Attempts()))
		return result, ge
	case err != nil:
		return nil, err
	}

	if !result.Verdict.Approved() {
		return result, nil
	}

	approval, err := result.Verdict.Approval()
	if err != nil {
		return result, fmt.Errorf("planning build: %w", err)
	}
	result.Plan, err = p.builder.Build(ctx, plan.Request{
		Intent:     req.Intent,
		Capability: capability,
		Approval:   approval,
		Strategy:   req.Strategy,
	})
	if err != nil {
		return result, fmt.Errorf("planning build: %w", err)
	}

	log.Info("build planned",
		zap.String("build_id", result.Plan.BuildID),
		zap.Int("attempts", result.Attempts))
	return result, nil
}

// classifyGeneratorError marks failures a new attempt may fix as
// transient. A missing generator binary or a cancelled run are not.
func classifyGeneratorError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	var missing *generator.MissingCommandError
	if errors.As(err, &missing) {
		return err
	}
	return gerrors.NewTransientGeneration(gerrors.CodeGeneratorFailed, "generator failed", err)
}
