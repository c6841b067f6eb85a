package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

// Exam grades attempts and looks up certificates.
type Exam struct {
	store     model.UpdatingRecordStore
	questions []model.Question
	passScore int
	logger    *logger.Logger
	now       func() time.Time
}

func NewExam(store model.UpdatingRecordStore, questions []model.Question, passScore int, logger *logger.Logger) *Exam {
	return &Exam{
		store:     store,
		questions: questions,
		passScore: passScore,
		logger:    logger,
		now:       time.Now,
	}
}

// Questions returns the question bank. Answers are not serialised.
func (e *Exam) Questions() []model.Question {
	return e.questions
}

// PassScore returns the minimal passing percentage.
func (e *Exam) PassScore() int {
	return e.passScore
}

// Grade returns the rounded percentage of correct answers.
// answers is keyed by question index.
func (e *Exam) Grade(answers map[int]string) int {
	if len(e.questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range e.questions {
		if answers[i] == q.Answer {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(e.questions)) * 100))
}

// Submit grades an attempt and appends it to the exam results.
// A certificate id is issued only for passing attempts.
func (e *Exam) Submit(ctx context.Context, username string, answers map[int]string) (model.ExamResult, error) {
	username = NormalizeUsername(username)
	score := e.Grade(answers)

	result := model.ExamResult{
		Username: username,
		Score:    score,
		Passed:   score >= e.passScore,
		Date:     formatDate(e.now()),
	}
	if result.Passed {
		certID, err := randomString(certIDAlphabet, certIDLength)
		if err != nil {
			return model.ExamResult{}, fmt.Errorf("failed to generate certificate id: %w", err)
		}
		result.CertID = certID
	}

	err := e.store.Update(ctx, model.CollectionExamResults, func(current model.RecordSet) ([]model.Record, error) {
		if _, ok := latestPass(current, username); ok {
			return nil, ErrAlreadyPassed
		}
		return append(current.Records, resultRecord(result)), nil
	})
	if errors.Is(err, ErrAlreadyPassed) {
		return model.ExamResult{}, err
	}
	if err != nil {
		e.logger.Error("Exam service: failed to store result",
			"username", username,
			"error", err.Error())
		return model.ExamResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	e.logger.Info("Exam service: exam submitted",
		"username", username,
		"score", score,
		"passed", result.Passed)

	return result, nil
}

// Certificate returns the latest passing result of the user.
func (e *Exam) Certificate(ctx context.Context, username string) (model.Certificate, error) {
	username = NormalizeUsername(username)

	results, err := e.store.Read(ctx, model.CollectionExamResults)
	if err != nil {
		return model.Certificate{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	res, ok := latestPass(results, username)
	if !ok {
		return model.Certificate{}, ErrNoCertificate
	}

	return model.Certificate{
		Username: username,
		Score:    res.Score,
		CertID:   res.CertID,
		Date:     res.Date,
	}, nil
}

// latestPass returns the last passing result of username in set order.
func latestPass(set model.RecordSet, username string) (model.ExamResult, bool) {
	for i := len(set.Records) - 1; i >= 0; i-- {
		res := resultFromRecord(set.Records[i])
		if NormalizeUsername(res.Username) == username && res.Passed {
			return res, true
		}
	}
	return model.ExamResult{}, false
}
