package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/patchrelease/internal/models"
)

type (
	MockGenerator struct {
		mock.Mock
	}

	MockApplier struct {
		mock.Mock
	}

	MockPackager struct {
		mock.Mock
	}
)

func (m *MockGenerator) Generate(ctx context.Context, projectDir, baseVersion string) (*models.PatchFile, error) {
	args := m.Called(ctx, projectDir, baseVersion)
	var pf *models.PatchFile
	if v := args.Get(0); v != nil {
		pf = v.(*models.PatchFile)
	}
	return pf, args.Error(1)
}

func (m *MockApplier) Apply(ctx context.Context, projectDir string, patchFile *models.PatchFile) error {
	args := m.Called(ctx, projectDir, patchFile)
	return args.Error(0)
}

func (m *MockPackager) Package(ctx context.Context, projectName, patchVersion, projectDir string) (*models.Package, error) {
	args := m.Called(ctx, projectName, patchVersion, projectDir)
	var pkg *models.Package
	if v := args.Get(0); v != nil {
		pkg = v.(*models.Package)
	}
	return pkg, args.Error(1)
}
