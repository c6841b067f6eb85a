package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

// Users registers candidates and opens their sessions.
type Users struct {
	store        model.UpdatingRecordStore
	tokenManager model.TokenManager
	logger       *logger.Logger
	now          func() time.Time
}

func NewUsers(store model.UpdatingRecordStore, tokenManager model.TokenManager, logger *logger.Logger) *Users {
	return &Users{
		store:        store,
		tokenManager: tokenManager,
		logger:       logger,
		now:          time.Now,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	// Passed reports whether the user already holds a passing result.
	Passed bool
}

// Register creates a user with a generated password.
func (u *Users) Register(ctx context.Context, username string) (model.User, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return model.User{}, ErrEmptyUsername
	}

	u.logger.Debug("Users service: registering user",
		"username", username)

	password, err := randomString(passwordAlphabet, passwordLength)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate password: %w", err)
	}

	user := model.User{
		Username:       username,
		Password:       password,
		RegisteredDate: formatDate(u.now()),
	}

	err = u.store.Update(ctx, model.CollectionUsers, func(current model.RecordSet) ([]model.Record, error) {
		for _, r := range current.Records {
			if NormalizeUsername(r.String("username")) == username {
				return nil, ErrUserExists
			}
		}
		return append(current.Records, userRecord(user)), nil
	})
	if errors.Is(err, ErrUserExists) {
		u.logger.Info("Users service: username already taken",
			"username", username)
		return model.User{}, err
	}
	if err != nil {
		u.logger.Error("Users service: failed to store user",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	u.logger.Info("Users service: user registered",
		"username", username)

	return user, nil
}

// Login checks credentials and issues a session token.
func (u *Users) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	users, err := u.store.Read(ctx, model.CollectionUsers)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	found := false
	for _, r := range users.Records {
		user := userFromRecord(r)
		if NormalizeUsername(user.Username) == username && user.Password == password {
			found = true
			break
		}
	}
	if !found {
		u.logger.Info("Users service: invalid credentials",
			"username", username)
		return LoginResult{}, ErrInvalidCredentials
	}

	results, err := u.store.Read(ctx, model.CollectionExamResults)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	_, passed := latestPass(results, username)

	token, err := u.tokenManager.GenerateSessionToken(username)
	if err != nil {
		u.logger.Error("Users service: failed to generate session token",
			"username", username,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	u.logger.Info("Users service: user logged in",
		"username", username,
		"passed", passed)

	return LoginResult{Token: token, Passed: passed}, nil
}
