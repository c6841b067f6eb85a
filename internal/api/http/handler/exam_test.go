package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	httpctx "github.com/dtroode/examcert-server/internal/api/http/context"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/service"
	"github.com/dtroode/examcert-server/internal/testutil"
)

func authedRequest(method, target, body, username string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(httpctx.NewManager().SetUsernameToContext(r.Context(), username))
}

func TestExam_Questions(t *testing.T) {
	svc := &examServiceMock{}
	svc.On("Questions").Return([]model.Question{{Text: "Q?", Options: []string{"a", "b"}, Answer: "a"}})
	svc.On("PassScore").Return(60)

	h := NewExam(svc, httpctx.NewManager(), testutil.MakeNoopLogger())
	rec := serve(h.Questions, httptest.NewRequest(http.MethodGet, "/api/questions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"questions":[{"question":"Q?","options":["a","b"]}],"pass_score":60}`, rec.Body.String())
}

func TestExam_Submit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *examServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "passed",
			body: `{"answers":{"0":"CSS","4":"Quick Response"}}`,
			setup: func(m *examServiceMock) {
				m.On("Submit", mock.Anything, "alice", map[int]string{0: "CSS", 4: "Quick Response"}).
					Return(model.ExamResult{Username: "alice", Score: 80, Passed: true, CertID: "ABCDEFGHIJ"}, nil)
				m.On("PassScore").Return(60)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"score":80,"passed":true,"pass_score":60,"cert_id":"ABCDEFGHIJ"}`,
		},
		{
			name: "failed",
			body: `{"answers":{}}`,
			setup: func(m *examServiceMock) {
				m.On("Submit", mock.Anything, "alice", map[int]string{}).
					Return(model.ExamResult{Username: "alice", Score: 0}, nil)
				m.On("PassScore").Return(60)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"score":0,"passed":false,"pass_score":60}`,
		},
		{
			name: "already passed",
			body: `{"answers":{}}`,
			setup: func(m *examServiceMock) {
				m.On("Submit", mock.Anything, "alice", map[int]string{}).
					Return(model.ExamResult{}, service.ErrAlreadyPassed)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "bad answer key",
			body:       `{"answers":{"q1":"CSS"}}`,
			setup:      func(*examServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &examServiceMock{}
			tt.setup(svc)
			h := NewExam(svc, httpctx.NewManager(), testutil.MakeNoopLogger())

			rec := serve(h.Submit, authedRequest(http.MethodPost, "/api/exam", tt.body, "alice"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestExam_Submit_WithoutSession(t *testing.T) {
	h := NewExam(&examServiceMock{}, httpctx.NewManager(), testutil.MakeNoopLogger())
	rec := serve(h.Submit, httptest.NewRequest(http.MethodPost, "/api/exam", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExam_Certificate(t *testing.T) {
	tests := []struct {
		name       string
		cert       model.Certificate
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			cert:       model.Certificate{Username: "alice", Score: 100, CertID: "ABCDEFGHIJ", Date: "2024-01-01 10:00"},
			wantStatus: http.StatusOK,
			wantBody:   `{"username":"alice","score":100,"cert_id":"ABCDEFGHIJ","date":"2024-01-01 10:00"}`,
		},
		{name: "none", err: service.ErrNoCertificate, wantStatus: http.StatusNotFound},
		{name: "store down", err: service.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &examServiceMock{}
			svc.On("Certificate", mock.Anything, "alice").Return(tt.cert, tt.err)
			h := NewExam(svc, httpctx.NewManager(), testutil.MakeNoopLogger())

			rec := serve(h.Certificate, authedRequest(http.MethodGet, "/api/certificate", "", "alice"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
