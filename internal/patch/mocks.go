package patch

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDiffer struct {
	mock.Mock
}

func (m *MockDiffer) DiffAgainstPatches(ctx context.Context, dir, baseVersion string) (string, error) {
	args := m.Called(ctx, dir, baseVersion)
	return args.String(0), args.Error(1)
}
