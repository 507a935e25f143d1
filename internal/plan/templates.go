package plan

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/ariel-frischer/specgate/internal/contract"
	gerrors "github.com/ariel-frischer/specgate/internal/errors"
)

// GenericDir holds templates used when a capability has none of its own.
const GenericDir = "generic"

// TemplateExt is the extension of template references.
const TemplateExt = ".tmpl"

//go:embed templates
var embedded embed.FS

// TemplateResolver reports which template references exist.
type TemplateResolver interface {
	Exists(ref string) bool
}

// FSTemplates resolves references against a file system.
type FSTemplates struct {
	fsys fs.FS
}

// NewFSTemplates returns a resolver rooted at fsys.
func NewFSTemplates(fsys fs.FS) *FSTemplates {
	return &FSTemplates{fsys: fsys}
}

// DefaultTemplates returns the templates shipped with the binary.
func DefaultTemplates() *FSTemplates {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("plan: embedded templates: %v", err))
	}
	return NewFSTemplates(sub)
}

// Exists implements TemplateResolver.
func (t *FSTemplates) Exists(ref string) bool {
	info, err := fs.Stat(t.fsys, ref)
	return err == nil && !info.IsDir()
}

// errTemplateMissing is wrapped by resolution failures.
var errTemplateMissing = errors.New("template not found")

// resolveTemplate picks the reference for one step: an explicit override,
// then the capability directory, then the generic directory.
func (b *Builder) resolveTemplate(capability *contract.Capability, step string) (string, error) {
	file := step + TemplateExt

	if ref, ok := capability.Templates.Overrides[step]; ok {
		if b.templates.Exists(ref) {
			return ref, nil
		}
		return "", templateError(capability.CapabilityID, step, ref)
	}

	dir := capability.Templates.Dir
	if dir == "" {
		dir = capability.CapabilityID
	}
	scoped := path.Join(dir, file)
	if b.templates.Exists(scoped) {
		return scoped, nil
	}

	generic := path.Join(GenericDir, file)
	if b.templates.Exists(generic) {
		b.logger.Info("template fallback",
			zap.String("capability", capability.CapabilityID),
			zap.String("step", step),
			zap.String("wanted", scoped),
			zap.String("using", generic))
		return generic, nil
	}
	return "", templateError(capability.CapabilityID, step, scoped, generic)
}

func templateError(capabilityID, step string, tried ...string) error {
	ge := gerrors.NewCapabilityViolation(gerrors.StagePlan, gerrors.CodeTemplateMissing,
		fmt.Sprintf("no template for step %q of capability %q", step, capabilityID),
		"Add a template at one of the tried locations").
		WithAlternatives(tried...).
		WithDetail("step", step)
	return fmt.Errorf("%w: %w", errTemplateMissing, ge)
}
