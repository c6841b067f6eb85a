package service

import "github.com/dtroode/examcert-server/internal/model"

// DefaultQuestions is the fixed exam question bank.
var DefaultQuestions = []model.Question{
	{
		Text:    "What does HTML stand for?",
		Options: []string{"Hyper Text Markup Language", "High Tech Machine Learning", "Home Tool Markup Language", "Hyperlink Text Mode Language"},
		Answer:  "Hyper Text Markup Language",
	},
	{
		Text:    "Which language is used for styling web pages?",
		Options: []string{"Java", "Python", "CSS", "C++"},
		Answer:  "CSS",
	},
	{
		Text:    "What does CSS stand for?",
		Options: []string{"Computer Style Sheets", "Cascading Style Sheets", "Creative Style System", "Colorful Style Sheets"},
		Answer:  "Cascading Style Sheets",
	},
	{
		Text:    "Which of the following is a Python web framework?",
		Options: []string{"Django", "Laravel", "Rails", "Express"},
		Answer:  "Django",
	},
	{
		Text:    "What does QR stand for in QR Code?",
		Options: []string{"Quick Response", "Quality Resolution", "Queue Request", "Quick Read"},
		Answer:  "Quick Response",
	},
}
