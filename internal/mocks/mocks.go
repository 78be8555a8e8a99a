// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/orchestrator"
	"github.com/xkilldash9x/ficwright/internal/prompt"
)

// -- Orchestrator Mocks --

// MockServer mocks orchestrator.Server.
type MockServer struct {
	mock.Mock
}

func (m *MockServer) Address() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLauncher mocks orchestrator.Launcher.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context) (orchestrator.Server, error) {
	args := m.Called(ctx)
	srv, _ := args.Get(0).(orchestrator.Server)
	return srv, args.Error(1)
}

// MockSessionOpener mocks orchestrator.SessionOpener.
type MockSessionOpener struct {
	mock.Mock
}

func (m *MockSessionOpener) Open(ctx context.Context, address string) (*browser.Session, error) {
	args := m.Called(ctx, address)
	s, _ := args.Get(0).(*browser.Session)
	return s, args.Error(1)
}

// MockCommand mocks orchestrator.Command without a preparation step.
type MockCommand struct {
	mock.Mock
}

func (m *MockCommand) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCommand) Execute(ctx context.Context, s *browser.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockPreparedCommand is a MockCommand that also implements orchestrator.Preparer.
type MockPreparedCommand struct {
	MockCommand
}

func (m *MockPreparedCommand) Prepare(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ orchestrator.Server        = (*MockServer)(nil)
	_ orchestrator.Launcher      = (*MockLauncher)(nil)
	_ orchestrator.SessionOpener = (*MockSessionOpener)(nil)
	_ orchestrator.Command       = (*MockCommand)(nil)
	_ orchestrator.Preparer      = (*MockPreparedCommand)(nil)
)

// -- Prompt Mock --

// MockPrompter mocks prompt.Prompter.
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Confirm(label string, defaultYes bool) (bool, error) {
	args := m.Called(label, defaultYes)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrompter) Wait(label string) error {
	args := m.Called(label)
	return args.Error(0)
}

var _ prompt.Prompter = (*MockPrompter)(nil)
