package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/service"
)

type usersServiceMock struct {
	mock.Mock
}

func (m *usersServiceMock) Register(ctx context.Context, username string) (model.User, error) {
	ret := m.Called(ctx, username)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *usersServiceMock) Login(ctx context.Context, username, password string) (service.LoginResult, error) {
	ret := m.Called(ctx, username, password)
	return ret.Get(0).(service.LoginResult), ret.Error(1)
}

type examServiceMock struct {
	mock.Mock
}

func (m *examServiceMock) Questions() []model.Question {
	return m.Called().Get(0).([]model.Question)
}

func (m *examServiceMock) PassScore() int {
	return m.Called().Int(0)
}

func (m *examServiceMock) Submit(ctx context.Context, username string, answers map[int]string) (model.ExamResult, error) {
	ret := m.Called(ctx, username, answers)
	return ret.Get(0).(model.ExamResult), ret.Error(1)
}

func (m *examServiceMock) Certificate(ctx context.Context, username string) (model.Certificate, error) {
	ret := m.Called(ctx, username)
	return ret.Get(0).(model.Certificate), ret.Error(1)
}
