package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/examcert-server/internal/model"
)

var _ model.TokenManager = (*TokenManager)(nil)

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateSessionToken(username string) (string, error) {
	ret := m.Called(username)
	return ret.String(0), ret.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (string, error) {
	ret := m.Called(token)
	return ret.String(0), ret.Error(1)
}
