package model

// User is a registered exam candidate.
type User struct {
	Username       string
	Password       string
	RegisteredDate string
}

// ExamResult is one exam attempt.
type ExamResult struct {
	Username string
	Score    int
	Passed   bool
	CertID   string
	Date     string
}

// Question is a multiple-choice exam question.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"-"`
}

// Certificate describes the latest passing result of a user.
type Certificate struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	CertID   string `json:"cert_id"`
	Date     string `json:"date"`
}
