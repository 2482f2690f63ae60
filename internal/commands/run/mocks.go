package run

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/pipeline"
)

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Run(ctx context.Context, req pipeline.Request) (*models.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}
