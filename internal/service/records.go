package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dtroode/examcert-server/internal/model"
)

// DateLayout is the persisted form of registration and exam dates.
const DateLayout = "2006-01-02 15:04"

const (
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	certIDAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passwordLength   = 8
	certIDLength     = 10
)

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func randomString(alphabet string, n int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

func userFromRecord(r model.Record) model.User {
	return model.User{
		Username:       r.String("username"),
		Password:       r.String("password"),
		RegisteredDate: r.String("registered_date"),
	}
}

func userRecord(u model.User) model.Record {
	return model.Record{
		"username":        u.Username,
		"password":        u.Password,
		"registered_date": u.RegisteredDate,
	}
}

func resultFromRecord(r model.Record) model.ExamResult {
	return model.ExamResult{
		Username: r.String("username"),
		Score:    intField(r, "score"),
		Passed:   boolField(r, "passed"),
		CertID:   r.String("cert_id"),
		Date:     r.String("date"),
	}
}

func resultRecord(res model.ExamResult) model.Record {
	return model.Record{
		"username": res.Username,
		"score":    res.Score,
		"passed":   res.Passed,
		"cert_id":  res.CertID,
		"date":     res.Date,
	}
}

// intField tolerates scores persisted as text or floats by hand-edited documents.
func intField(r model.Record, field string) int {
	switch v := r[field].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func boolField(r model.Record, field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case int:
		return v != 0
	}
	return false
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
