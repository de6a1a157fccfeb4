package domain

import (
	"fmt"
	"time"
)

// Difficulty classifies how hard a question is.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists the known difficulties in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Question models a multiple-choice programming question.
// The options slice is the answer domain; CorrectAnswerIndex points into it.
type Question struct {
	ID                 int        `json:"id" yaml:"id"`
	Language           string     `json:"language" yaml:"language"`
	Category           string     `json:"category" yaml:"category"`
	Difficulty         Difficulty `json:"difficulty" yaml:"difficulty"`
	Prompt             string     `json:"prompt" yaml:"prompt"`
	CodeSnippet        string     `json:"codeSnippet,omitempty" yaml:"codeSnippet,omitempty"`
	Options            []string   `json:"options" yaml:"options"`
	CorrectAnswerIndex int        `json:"correctAnswerIndex" yaml:"correctAnswerIndex"`
	Explanation        string     `json:"explanation" yaml:"explanation"`
}

// Validate checks the structural invariants of a single question.
func (q Question) Validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("%w: id %d must be positive", ErrInvalidQuestion, q.ID)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: question %d has unknown difficulty %q", ErrInvalidQuestion, q.ID, q.Difficulty)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d needs at least 2 options, has %d", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %d correct answer %d outside [0,%d)", ErrInvalidQuestion, q.ID, q.CorrectAnswerIndex, len(q.Options))
	}
	return nil
}

// ValidateQuestions validates every question and rejects duplicate IDs.
func ValidateQuestions(questions []Question) error {
	seen := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// Status is the lifecycle stage of a quiz session.
type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
)

// Unanswered marks an answer slot with no selection.
const Unanswered = -1

// SessionState is the complete, serialisable state of one quiz session.
// Session stores persist it; the app package rebuilds sessions from it.
type SessionState struct {
	Questions    []Question    `json:"questions"`
	CurrentIndex int           `json:"currentIndex"`
	Answers      []int         `json:"answers"`
	Score        int           `json:"score"`
	StartedAt    time.Time     `json:"startedAt"`
	Elapsed      time.Duration `json:"elapsed"`
	Status       Status        `json:"status"`
}

// Snapshot is the read model a presentation layer renders from.
type Snapshot struct {
	SessionID       string        `json:"sessionId,omitempty"`
	Status          Status        `json:"status"`
	Total           int           `json:"total"`
	CurrentIndex    int           `json:"currentIndex"`
	Current         Question      `json:"current"`
	SelectedAnswers []int         `json:"selectedAnswers"`
	Answered        int           `json:"answered"`
	Progress        int           `json:"progress"` // percent of answered slots
	Position        int           `json:"position"` // percent of the way through, counting the current question
	Score           *int          `json:"score,omitempty"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Facets lists the values a presentation layer can offer per filter facet.
type Facets struct {
	Languages    []string `json:"languages"`
	Difficulties []string `json:"difficulties"`
	Categories   []string `json:"categories"`
}
