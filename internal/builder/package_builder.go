package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/runner"
)

const archiveExt = ".tar.gz"

// PackageBuilder archives a patched project into the workspace root.
type PackageBuilder struct {
	workspace string
	runner    runner.Runner
}

type Option func(*PackageBuilder)

func WithRunner(r runner.Runner) Option {
	return func(b *PackageBuilder) {
		b.runner = r
	}
}

func NewPackageBuilder(workspace string, opts ...Option) *PackageBuilder {
	b := &PackageBuilder{
		workspace: workspace,
		runner:    runner.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FileName returns "<projectName>-<patchVersion>.tar.gz".
func FileName(projectName, patchVersion string) string {
	return projectName + "-" + patchVersion + archiveExt
}

// Package runs tar from the parent of projectDir so the archive root entry is
// the project directory name. A failed run removes whatever tar left behind.
func (b *PackageBuilder) Package(ctx context.Context, projectName, patchVersion, projectDir string) (*models.Package, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(projectName) == "" {
		return nil, domainErrors.ErrPackageName
	}

	fileName := FileName(projectName, patchVersion)
	packagePath := filepath.Join(b.workspace, fileName)
	projectDir = filepath.Clean(projectDir)

	log.Info("packaging project",
		"package", fileName,
		"dir", projectDir)

	res, err := b.runner.Run(ctx, runner.Command{
		Name: "tar",
		Args: []string{"czf", packagePath, filepath.Base(projectDir)},
		Dir:  filepath.Dir(projectDir),
	})
	if err != nil {
		if rmErr := os.Remove(packagePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn("could not remove partial package",
				"path", packagePath,
				"error", rmErr)
		}

		appErr := domainErrors.ErrPackaging.WithError(err).
			WithContext("package", fileName)
		if res != nil {
			appErr = appErr.WithContext("stderr", strings.TrimSpace(res.Stderr))
		}
		return nil, appErr
	}

	log.Info("package created",
		"package", fileName,
		"path", packagePath)

	return &models.Package{
		FileName: fileName,
		Path:     packagePath,
	}, nil
}
