// Package mocks holds testify mocks shared by package tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
//
// Arguments are matched as (ctx, name, args):
//
//	exec := &mocks.MockCommandExecutor{}
//	exec.On("CombinedOutput", mock.Anything, "mount", []string{"/dev/sda1", "/mnt/sda1"}).
//		Return([]byte{}, nil)
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	out, _ := called.Get(0).([]byte)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return out, called.Error(1)
}

func (m *MockCommandExecutor) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	out, _ := called.Get(0).([]byte)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return out, called.Error(1)
}
