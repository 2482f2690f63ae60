package runner

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner records invocations and returns scripted results.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	args := m.Called(ctx, cmd)
	var result *Result
	if r := args.Get(0); r != nil {
		result = r.(*Result)
	}
	return result, args.Error(1)
}

// Commands returns every command the mock received, in order.
func (m *MockRunner) Commands() []Command {
	cmds := make([]Command, 0, len(m.Calls))
	for _, call := range m.Calls {
		if cmd, ok := call.Arguments.Get(1).(Command); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
