package plan

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
	"github.com/ariel-frischer/specgate/internal/gate"
	"github.com/ariel-frischer/specgate/internal/rules"
	"github.com/ariel-frischer/specgate/internal/testutil"
)

func genericFS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range StepNames() {
		fsys["generic/"+name+TemplateExt] = &fstest.MapFile{Data: []byte(name)}
	}
	return fsys
}

func approve(t *testing.T, spec *contract.Specification, capability *contract.Capability) *gate.Approval {
	t.Helper()

	reg, err := rules.Default(rules.Options{})
	require.NoError(t, err)
	v, err := gate.New(rules.NewEngine(reg, nil), nil).EvaluateSpec(context.Background(), spec, capability)
	require.NoError(t, err)
	approval, err := v.Approval()
	require.NoError(t, err)
	return approval
}

func request(t *testing.T) Request {
	t.Helper()

	capability := testutil.StarRatingCapability()
	return Request{
		Intent:     testutil.SampleIntent(),
		Capability: capability,
		Approval:   approve(t, testutil.ValidSpec(), capability),
	}
}

func TestBuild_Steps(t *testing.T) {
	t.Parallel()

	plan, err := NewBuilder(DefaultTemplates(), nil).Build(context.Background(), request(t))
	require.NoError(t, err)

	require.Len(t, plan.Steps, StepCount)
	for i, s := range plan.Steps {
		assert.Equal(t, i+1, s.Order)
	}

	want := []contract.PlanStep{
		{Order: 1, Name: StepManifest, TemplateRef: "generic/manifest.tmpl", OutputPath: "StarRating/ControlManifest.Input.xml", Required: true},
		{Order: 2, Name: StepComponentEntry, TemplateRef: "star-rating/component-entry.tmpl", OutputPath: "StarRating/index.ts", Required: true},
		{Order: 3, Name: StepGeneratedTypes, TemplateRef: "generic/generated-types.tmpl", OutputPath: "StarRating/generated/ManifestTypes.d.ts", Required: true},
		{Order: 4, Name: StepStylesheet, TemplateRef: "generic/stylesheet.tmpl", OutputPath: "StarRating/css/StarRating.css"},
		{Order: 5, Name: StepResourceStrings, TemplateRef: "generic/resource-strings.tmpl", OutputPath: "StarRating/strings/StarRating.1033.resx"},
		{Order: 6, Name: StepPackageManifest, TemplateRef: "generic/package-manifest.tmpl", OutputPath: "package.json", Required: true},
		{Order: 7, Name: StepProjectFile, TemplateRef: "generic/project-file.tmpl", OutputPath: "Contoso.StarRating.pcfproj", Required: true},
	}
	if diff := cmp.Diff(want, plan.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, contract.CurrentVersion, plan.Version)
	assert.Equal(t, StrategyDeterministic, plan.Strategy)
	assert.NotNil(t, plan.ValidationReport)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	b := NewBuilder(NewFSTemplates(genericFS()), nil)

	first, err := b.Build(context.Background(), request(t))
	require.NoError(t, err)
	second, err := b.Build(context.Background(), request(t))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ (-first +second):\n%s", diff)
	}
	assert.Regexp(t, `^det-[0-9a-f]{16}$`, first.BuildID)
}

func TestBuild_TemplateResolution(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fsys      fstest.MapFS
		hints     contract.TemplateHints
		step      string
		wantRef   string
		wantFall  bool
		wantError bool
	}{
		"capability scoped": {
			fsys:    fstest.MapFS{"star-rating/manifest.tmpl": {}},
			step:    StepManifest,
			wantRef: "star-rating/manifest.tmpl",
		},
		"custom directory": {
			fsys:    fstest.MapFS{"rating/v2/manifest.tmpl": {}},
			hints:   contract.TemplateHints{Dir: "rating/v2"},
			step:    StepManifest,
			wantRef: "rating/v2/manifest.tmpl",
		},
		"explicit override": {
			fsys:    fstest.MapFS{"shared/xml.tmpl": {}},
			hints:   contract.TemplateHints{Overrides: map[string]string{StepManifest: "shared/xml.tmpl"}},
			step:    StepManifest,
			wantRef: "shared/xml.tmpl",
		},
		"generic fallback": {
			step:     StepManifest,
			wantRef:  "generic/manifest.tmpl",
			wantFall: true,
		},
		"missing override": {
			hints:     contract.TemplateHints{Overrides: map[string]string{StepManifest: "shared/none.tmpl"}},
			step:      StepManifest,
			wantError: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fsys := genericFS()
			for k, v := range tc.fsys {
				fsys[k] = v
			}
			core, logs := observer.New(zapcore.InfoLevel)
			b := NewBuilder(NewFSTemplates(fsys), zap.New(core))

			capability := testutil.StarRatingCapability()
			capability.Templates = tc.hints

			ref, err := b.resolveTemplate(capability, tc.step)
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRef, ref)

			fallbacks := logs.FilterMessage("template fallback").All()
			if !tc.wantFall {
				assert.Empty(t, fallbacks)
				return
			}
			require.Len(t, fallbacks, 1)
			assert.Equal(t, tc.step, fallbacks[0].ContextMap()["step"])
			assert.Equal(t, "star-rating/manifest.tmpl", fallbacks[0].ContextMap()["wanted"])
		})
	}
}

func TestBuild_TemplateMissing(t *testing.T) {
	t.Parallel()

	fsys := genericFS()
	delete(fsys, "generic/stylesheet.tmpl")

	_, err := NewBuilder(NewFSTemplates(fsys), nil).Build(context.Background(), request(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errTemplateMissing))

	ge := gerrors.AsGateError(err)
	require.NotNil(t, ge)
	assert.Equal(t, gerrors.CodeTemplateMissing, ge.Code)
	assert.Equal(t, []string{"star-rating/stylesheet.tmpl", "generic/stylesheet.tmpl"}, ge.Alternatives)
}

func TestBuild_Drift(t *testing.T) {
	t.Parallel()

	swapped := append([]stepDef(nil), defaultCatalog...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	repeated := append([]stepDef(nil), defaultCatalog...)
	repeated[6].name = repeated[0].name

	tests := map[string][]stepDef{
		"missing step": defaultCatalog[:6],
		"extra step":   append(append([]stepDef(nil), defaultCatalog...), stepDef{order: 8, name: "extra"}),
		"reordered":    swapped,
		"repeated":     repeated,
	}

	for name, catalog := range tests {
		catalog := catalog
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := NewBuilder(NewFSTemplates(genericFS()), nil, withCatalog(catalog))
			_, err := b.Build(context.Background(), request(t))
			assert.ErrorIs(t, err, ErrPlanDrift)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	b := NewBuilder(NewFSTemplates(genericFS()), nil)

	req := request(t)
	req.Capability = nil
	_, err := b.Build(context.Background(), req)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Build(ctx, request(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_RequiresApproval(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate    func(*Request)
		wantCode  string
		wantStage gerrors.Stage
	}{
		"no approval": {
			mutate:    func(r *Request) { r.Approval = nil },
			wantCode:  gerrors.CodePlanUnapproved,
			wantStage: gerrors.StagePlan,
		},
		"zero approval": {
			mutate:    func(r *Request) { r.Approval = &gate.Approval{} },
			wantCode:  gerrors.CodePlanUnapproved,
			wantStage: gerrors.StagePlan,
		},
		"approved for another capability": {
			mutate:    func(r *Request) { r.Capability = testutil.DatasetCapability() },
			wantCode:  gerrors.CodeCapabilityMismatch,
			wantStage: gerrors.StagePlan,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := request(t)
			tc.mutate(&req)

			plan, err := NewBuilder(NewFSTemplates(genericFS()), nil).Build(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, plan)

			ge := gerrors.AsGateError(err)
			require.NotNil(t, ge)
			assert.Equal(t, tc.wantCode, ge.Code)
			assert.Equal(t, tc.wantStage, ge.Stage)
		})
	}
}

func TestBuild_UniqueStrategy(t *testing.T) {
	t.Parallel()

	req := request(t)
	req.Strategy = NewUnique()

	plan, err := NewBuilder(NewFSTemplates(genericFS()), nil).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StrategyUnique, plan.Strategy)
	assert.Regexp(t, `^bld-\d{8}T\d{6}-[0-9a-f]{32}$`, plan.BuildID)
}
