package patch

import (
	"context"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/fsys"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/models"
)

// differ is the part of the git service the generator needs.
type differ interface {
	DiffAgainstPatches(ctx context.Context, dir, baseVersion string) (string, error)
}

// Generator writes the patches-branch diff into the project directory.
type Generator struct {
	git        differ
	filesystem fsys.Factory
}

type GeneratorOption func(*Generator)

func WithGeneratorFilesystem(f fsys.Factory) GeneratorOption {
	return func(g *Generator) {
		g.filesystem = f
	}
}

func NewGenerator(git differ, opts ...GeneratorOption) *Generator {
	g := &Generator{
		git:        git,
		filesystem: fsys.OS,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate writes the diff between HEAD and origin/<baseVersion>-patches to
// patch.diff inside projectDir. An empty diff yields an empty file.
func (g *Generator) Generate(ctx context.Context, projectDir, baseVersion string) (*models.PatchFile, error) {
	log := logger.FromContext(ctx)

	diff, err := g.git.DiffAgainstPatches(ctx, projectDir, baseVersion)
	if err != nil {
		return nil, err
	}

	fs := g.filesystem(projectDir)
	if err := util.WriteFile(fs, models.PatchFileName, []byte(diff), 0o644); err != nil {
		return nil, domainErrors.ErrWritePatchFile.WithError(err).
			WithContext("dir", projectDir)
	}

	patchFile := &models.PatchFile{
		Path: filepath.Join(projectDir, models.PatchFileName),
		Size: int64(len(diff)),
	}

	log.Info("patch file generated",
		"file", patchFile.Path,
		"size", patchFile.Size)

	return patchFile, nil
}
