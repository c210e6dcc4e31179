package dispatch

import (
	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

// Job carries everything a background build needs. Brief may be empty when
// the user bailed out before brief synthesis finished; the worker rebuilds
// it from the quiz answers.
type Job struct {
	UserID    string                `json:"userId"`
	UserEmail string                `json:"userEmail"`
	Quiz      synthesis.QuizAnswers `json:"quizData"`
	Brief     string                `json:"brief"`
	ImageData string                `json:"imageData,omitempty"`
}
