package domain

import (
	"fmt"
	"math"
	"time"
)

// NotAnswered is shown in a review item for an unanswered slot.
const NotAnswered = "Not answered"

// ReviewItem describes the outcome of one question in a completed attempt.
type ReviewItem struct {
	Question       Question `json:"question"`
	SelectedIndex  int      `json:"selectedIndex"`
	SelectedAnswer string   `json:"selectedAnswer"`
	CorrectAnswer  string   `json:"correctAnswer"`
	Correct        bool     `json:"correct"`
}

// Result summarizes a completed attempt.
type Result struct {
	Score              int           `json:"score"`
	Total              int           `json:"total"`
	Answered           int           `json:"answered"`
	Accuracy           int           `json:"accuracy"` // rounded percent
	Grade              string        `json:"grade"`
	Rating             string        `json:"rating"`
	Message            string        `json:"message"`
	Elapsed            time.Duration `json:"elapsed"`
	AveragePerQuestion time.Duration `json:"averagePerQuestion"` // whole seconds
	Items              []ReviewItem  `json:"items"`
}

// Accuracy returns round(score/total*100), or 0 for an empty total.
func Accuracy(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Grade maps an accuracy percentage to a letter.
func Grade(accuracy int) string {
	switch {
	case accuracy >= 80:
		return "A"
	case accuracy >= 70:
		return "B"
	case accuracy >= 60:
		return "C"
	default:
		return "D"
	}
}

// Rating maps an accuracy percentage to a coarse label.
func Rating(accuracy int) string {
	switch {
	case accuracy >= 80:
		return "Excellent"
	case accuracy >= 60:
		return "Good"
	default:
		return "Needs Work"
	}
}

// PerformanceMessage returns the encouragement line for an accuracy percentage.
func PerformanceMessage(accuracy int) string {
	switch {
	case accuracy >= 90:
		return "Outstanding!"
	case accuracy >= 80:
		return "Excellent work!"
	case accuracy >= 70:
		return "Good job!"
	case accuracy >= 60:
		return "Not bad! Keep practicing!"
	default:
		return "Keep learning! You'll improve!"
	}
}

// AveragePerQuestion rounds elapsed/total to whole seconds.
func AveragePerQuestion(elapsed time.Duration, total int) time.Duration {
	if total <= 0 {
		return 0
	}
	secs := math.Round(elapsed.Seconds() / float64(total))
	return time.Duration(secs) * time.Second
}

// FormatDuration renders d as m:ss, truncating to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
