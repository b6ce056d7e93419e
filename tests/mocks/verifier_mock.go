package mocks

import (
	context "context"
	reflect "reflect"

	status "github.com/mini-maxit/taucheck/pkg/status"
	gomock "go.uber.org/mock/gomock"
)

// MockVerifier is a mock of Verifier interface.
type MockVerifier struct {
	ctrl     *gomock.Controller
	recorder *MockVerifierMockRecorder
	isgomock struct{}
}

// MockVerifierMockRecorder is the mock recorder for MockVerifier.
type MockVerifierMockRecorder struct {
	mock *MockVerifier
}

// NewMockVerifier creates a new mock instance.
func NewMockVerifier(ctrl *gomock.Controller) *MockVerifier {
	mock := &MockVerifier{ctrl: ctrl}
	mock.recorder = &MockVerifierMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockVerifier) EXPECT() *MockVerifierMockRecorder {
	return m.recorder
}

// InputPathOf mocks base method.
func (m *MockVerifier) InputPathOf(name string) string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InputPathOf", name)
	ret0, _ := ret[0].(string)
	return ret0
}

// InputPathOf indicates an expected call of InputPathOf.
func (mr *MockVerifierMockRecorder) InputPathOf(name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InputPathOf", reflect.TypeOf((*MockVerifier)(nil).InputPathOf), name)
}

// OutputPathOf mocks base method.
func (m *MockVerifier) OutputPathOf(name string) string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "OutputPathOf", name)
	ret0, _ := ret[0].(string)
	return ret0
}

// OutputPathOf indicates an expected call of OutputPathOf.
func (mr *MockVerifierMockRecorder) OutputPathOf(name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OutputPathOf", reflect.TypeOf((*MockVerifier)(nil).OutputPathOf), name)
}

// Run mocks base method.
func (m *MockVerifier) Run(ctx context.Context, name string) (status.VerifyStatus, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Run", ctx, name)
	ret0, _ := ret[0].(status.VerifyStatus)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Run indicates an expected call of Run.
func (mr *MockVerifierMockRecorder) Run(ctx, name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Run", reflect.TypeOf((*MockVerifier)(nil).Run), ctx, name)
}
