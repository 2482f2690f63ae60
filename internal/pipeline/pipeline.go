// Package pipeline sequences a patch release: generate the patch, apply
// it, stamp the patch version and package the project. Steps run one after
// the other and the first failure ends the run with its error untouched.
// Nothing is rolled back; the caller discards the checkout on failure.
package pipeline

import (
	"context"

	"github.com/thomas-vilte/patchrelease/internal/fsys"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/stamp"
	"github.com/thomas-vilte/patchrelease/internal/version"
)

type patchGenerator interface {
	Generate(ctx context.Context, projectDir, baseVersion string) (*models.PatchFile, error)
}

type patchApplier interface {
	Apply(ctx context.Context, projectDir string, patchFile *models.PatchFile) error
}

type packager interface {
	Package(ctx context.Context, projectName, patchVersion, projectDir string) (*models.Package, error)
}

// Request is everything a run needs.
type Request struct {
	Project     models.Project
	BaseVersion string
	Revision    string
}

type Pipeline struct {
	generator  patchGenerator
	applier    patchApplier
	packager   packager
	filesystem fsys.Factory
	observers  []Observer
}

type Option func(*Pipeline)

// WithFilesystem sets how the project directory is opened for stamping.
func WithFilesystem(f fsys.Factory) Option {
	return func(p *Pipeline) {
		p.filesystem = f
	}
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

func New(generator patchGenerator, applier patchApplier, packager packager, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator:  generator,
		applier:    applier,
		packager:   packager,
		filesystem: fsys.OS,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pipeline run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.Result, error) {
	log := logger.FromContext(ctx)
	project := req.Project

	observers := append([]Observer{func(from, to State) {
		log.Debug("pipeline transition", "from", from, "state", to)
	}}, p.observers...)
	m := newMachine(observers)

	// resolved before the first mutating step so an unknown type leaves
	// the project untouched
	stamper, err := stamp.For(project.Type)
	if err != nil {
		m.fail()
		return nil, err
	}

	patchVersion := version.ResolvePatch(req.BaseVersion, req.Revision)
	log.Info("starting patch release",
		"project", project.Name,
		"type", project.Type,
		"version", patchVersion)

	patchFile, err := p.generator.Generate(ctx, project.Dir, req.BaseVersion)
	if err != nil {
		m.fail()
		return nil, err
	}
	if err := m.advance(StatePatchGenerated); err != nil {
		return nil, err
	}

	if err := p.applier.Apply(ctx, project.Dir, patchFile); err != nil {
		m.fail()
		return nil, err
	}
	if err := m.advance(StatePatchApplied); err != nil {
		return nil, err
	}

	if err := stamper.Stamp(p.filesystem(project.Dir), patchVersion); err != nil {
		m.fail()
		return nil, err
	}
	if err := m.advance(StateVersionStamped); err != nil {
		return nil, err
	}

	pkg, err := p.packager.Package(ctx, project.Name, patchVersion, project.Dir)
	if err != nil {
		m.fail()
		return nil, err
	}
	if err := m.advance(StatePackaged); err != nil {
		return nil, err
	}

	if err := m.advance(StateDone); err != nil {
		return nil, err
	}

	log.Info("patch release finished",
		"version", patchVersion,
		"package", pkg.FileName)

	return &models.Result{
		Version:     patchVersion,
		Package:     pkg.FileName,
		PackagePath: pkg.Path,
	}, nil
}
