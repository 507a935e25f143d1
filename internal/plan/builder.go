// Package plan turns an approved specification into an execution plan: a
// fixed, ordered catalog of generation steps with resolved template
// references and a build identifier.
package plan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/gate"
)

// Request carries everything needed to plan one build. Approval comes from
// an approved gate verdict for Capability.
type Request struct {
	Intent     contract.Intent
	Capability *contract.Capability
	Approval   *gate.Approval
	// Strategy defaults to Deterministic.
	Strategy IDStrategy
}

// Builder constructs execution plans. It is safe for concurrent use.
type Builder struct {
	templates TemplateResolver
	logger    *zap.Logger
	catalog   []stepDef
}

// Option configures a Builder.
type Option func(*Builder)

func withCatalog(catalog []stepDef) Option {
	return func(b *Builder) { b.catalog = catalog }
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(templates TemplateResolver, logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{templates: templates, logger: logger, catalog: defaultCatalog}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the execution plan for an approved specification.
func (b *Builder) Build(ctx context.Context, req Request) (*contract.ExecutionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Capability == nil {
		return nil, fmt.Errorf("plan: capability is required")
	}
	if !req.Approval.Valid() {
		return nil, gerrors.Unapproved()
	}
	spec := req.Approval.Specification()
	if got := req.Approval.CapabilityID(); got != req.Capability.CapabilityID || spec.CapabilityID != got {
		if got == req.Capability.CapabilityID {
			got = spec.CapabilityID
		}
		e := gerrors.CapabilityMismatch(req.Capability.CapabilityID, got)
		e.Stage = gerrors.StagePlan
		return nil, e
	}
	if err := checkCatalog(b.catalog); err != nil {
		return nil, err
	}

	strategy := req.Strategy
	if strategy == nil {
		strategy = Deterministic{}
	}
	buildID, err := strategy.ID(req.Intent, req.Capability.CapabilityID)
	if err != nil {
		return nil, err
	}

	name := spec.Component.Name
	namespace := spec.Component.Namespace
	steps := make([]contract.PlanStep, 0, len(b.catalog))
	for _, def := range b.catalog {
		ref, err := b.resolveTemplate(req.Capability, def.name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, contract.PlanStep{
			Order:       def.order,
			Name:        def.name,
			TemplateRef: ref,
			OutputPath:  expandOutput(def.output, name, namespace),
			Required:    def.required,
		})
	}

	b.logger.Debug("plan built",
		zap.String("build_id", buildID),
		zap.String("strategy", strategy.Name()),
		zap.String("capability", req.Capability.CapabilityID),
		zap.Int("steps", len(steps)))

	return &contract.ExecutionPlan{
		Version:          contract.CurrentVersion,
		BuildID:          buildID,
		Strategy:         strategy.Name(),
		Steps:            steps,
		Specification:    spec,
		ValidationReport: req.Approval.Report(),
	}, nil
}
