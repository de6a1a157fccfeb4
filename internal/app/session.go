package app

import (
	"fmt"
	"time"

	"syntax-quiz/internal/domain"
)

// Session is one attempt at a fixed question set.
//
// Session is a value: every transition returns a new Session and leaves the
// receiver untouched. The question slice is shared between generations but is
// never written after construction; the answers slice is copied on write.
type Session struct {
	questions []domain.Question
	current   int
	answers   []int
	score     int
	startedAt time.Time
	elapsed   time.Duration
	status    domain.Status
	now       func() time.Time
}

// NewSession creates a NotStarted session over questions.
func NewSession(questions []domain.Question) (Session, error) {
	return NewSessionWithClock(questions, time.Now)
}

// NewSessionWithClock is NewSession with an injectable clock for deterministic tests.
func NewSessionWithClock(questions []domain.Question, now func() time.Time) (Session, error) {
	if len(questions) == 0 {
		return Session{}, domain.ErrEmptyQuestionSet
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return Session{}, err
	}
	owned := make([]domain.Question, len(questions))
	copy(owned, questions)
	return freshSession(owned, now), nil
}

// RestoreSession rebuilds a session from persisted state.
func RestoreSession(state domain.SessionState, now func() time.Time) (Session, error) {
	if len(state.Questions) == 0 {
		return Session{}, domain.ErrEmptyQuestionSet
	}
	if err := domain.ValidateQuestions(state.Questions); err != nil {
		return Session{}, fmt.Errorf("restore session: %w", err)
	}
	if len(state.Answers) != len(state.Questions) {
		return Session{}, fmt.Errorf("restore session: %d answers for %d questions", len(state.Answers), len(state.Questions))
	}
	if state.CurrentIndex < 0 || state.CurrentIndex >= len(state.Questions) {
		return Session{}, &domain.IndexError{Err: domain.ErrOutOfRange, Index: state.CurrentIndex, Len: len(state.Questions)}
	}
	for i, a := range state.Answers {
		if a != domain.Unanswered && (a < 0 || a >= len(state.Questions[i].Options)) {
			return Session{}, &domain.IndexError{Err: domain.ErrInvalidAnswerIndex, Index: a, Len: len(state.Questions[i].Options)}
		}
	}
	switch state.Status {
	case domain.NotStarted, domain.InProgress, domain.Completed:
	default:
		return Session{}, fmt.Errorf("restore session: unknown status %q", state.Status)
	}
	if now == nil {
		now = time.Now
	}
	answers := make([]int, len(state.Answers))
	copy(answers, state.Answers)
	return Session{
		questions: state.Questions,
		current:   state.CurrentIndex,
		answers:   answers,
		score:     state.Score,
		startedAt: state.StartedAt,
		elapsed:   state.Elapsed,
		status:    state.Status,
		now:       now,
	}, nil
}

func freshSession(questions []domain.Question, now func() time.Time) Session {
	if now == nil {
		now = time.Now
	}
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = domain.Unanswered
	}
	return Session{
		questions: questions,
		answers:   answers,
		status:    domain.NotStarted,
		now:       now,
	}
}

// Start moves a NotStarted session to InProgress and records the start time.
func (s Session) Start() (Session, error) {
	if s.status != domain.NotStarted {
		return s, &domain.TransitionError{Op: "start", Status: s.status}
	}
	s.status = domain.InProgress
	s.startedAt = s.now()
	return s, nil
}

// SelectAnswer records answerIndex for the current question, replacing any earlier choice.
func (s Session) SelectAnswer(answerIndex int) (Session, error) {
	if err := s.requireInProgress("select answer"); err != nil {
		return s, err
	}
	options := len(s.questions[s.current].Options)
	if answerIndex < 0 || answerIndex >= options {
		return s, &domain.IndexError{Err: domain.ErrInvalidAnswerIndex, Index: answerIndex, Len: options}
	}
	answers := make([]int, len(s.answers))
	copy(answers, s.answers)
	answers[s.current] = answerIndex
	s.answers = answers
	return s, nil
}

// Next advances to the following question; it is a no-op on the last one.
func (s Session) Next() (Session, error) {
	if err := s.requireInProgress("go to next question"); err != nil {
		return s, err
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return s, nil
}

// Previous steps back one question; it is a no-op on the first one.
func (s Session) Previous() (Session, error) {
	if err := s.requireInProgress("go to previous question"); err != nil {
		return s, err
	}
	if s.current > 0 {
		s.current--
	}
	return s, nil
}

// GoTo jumps to the question at index.
func (s Session) GoTo(index int) (Session, error) {
	if err := s.requireInProgress("go to question"); err != nil {
		return s, err
	}
	if index < 0 || index >= len(s.questions) {
		return s, &domain.IndexError{Err: domain.ErrOutOfRange, Index: index, Len: len(s.questions)}
	}
	s.current = index
	return s, nil
}

// Complete scores the attempt and freezes the elapsed time.
// Unanswered slots count as incorrect.
func (s Session) Complete() (Session, error) {
	if err := s.requireInProgress("complete"); err != nil {
		return s, err
	}
	score := 0
	for i, answer := range s.answers {
		if answer != domain.Unanswered && answer == s.questions[i].CorrectAnswerIndex {
			score++
		}
	}
	s.score = score
	s.elapsed = s.now().Sub(s.startedAt)
	s.status = domain.Completed
	return s, nil
}

// Reset returns a fresh NotStarted session over the same questions.
func (s Session) Reset() Session {
	return freshSession(s.questions, s.now)
}

// Elapsed is zero before start, live while in progress and frozen once completed.
func (s Session) Elapsed() time.Duration {
	switch s.status {
	case domain.InProgress:
		return s.now().Sub(s.startedAt)
	case domain.Completed:
		return s.elapsed
	default:
		return 0
	}
}

func (s Session) Status() domain.Status { return s.status }

func (s Session) CurrentIndex() int { return s.current }

func (s Session) Len() int { return len(s.questions) }

// CurrentQuestion returns the question at the current index.
func (s Session) CurrentQuestion() domain.Question { return s.questions[s.current] }

// Questions returns a copy of the session's question set.
func (s Session) Questions() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// SelectedAnswers returns a copy of the answer slots; domain.Unanswered marks empty slots.
func (s Session) SelectedAnswers() []int {
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

// Score returns the final score; ok is false until the session is completed.
func (s Session) Score() (score int, ok bool) {
	if s.status != domain.Completed {
		return 0, false
	}
	return s.score, true
}

// StartedAt returns the start time, zero before Start.
func (s Session) StartedAt() time.Time { return s.startedAt }

func (s Session) answered() int {
	n := 0
	for _, a := range s.answers {
		if a != domain.Unanswered {
			n++
		}
	}
	return n
}

// State exports the session for persistence.
func (s Session) State() domain.SessionState {
	return domain.SessionState{
		Questions:    s.questions,
		CurrentIndex: s.current,
		Answers:      s.SelectedAnswers(),
		Score:        s.score,
		StartedAt:    s.startedAt,
		Elapsed:      s.elapsed,
		Status:       s.status,
	}
}

// Snapshot builds the render view of the session at the current time.
func (s Session) Snapshot() domain.Snapshot {
	answered := s.answered()
	snap := domain.Snapshot{
		Status:          s.status,
		Total:           len(s.questions),
		CurrentIndex:    s.current,
		Current:         s.questions[s.current],
		SelectedAnswers: s.SelectedAnswers(),
		Answered:        answered,
		Progress:        domain.Accuracy(answered, len(s.questions)),
		Position:        domain.Accuracy(s.current+1, len(s.questions)),
		Elapsed:         s.Elapsed(),
	}
	if score, ok := s.Score(); ok {
		snap.Score = &score
	}
	return snap
}

// Review summarizes a completed session question by question.
func (s Session) Review() (domain.Result, error) {
	if s.status != domain.Completed {
		return domain.Result{}, &domain.TransitionError{Op: "review", Status: s.status}
	}
	items := make([]domain.ReviewItem, len(s.questions))
	for i, q := range s.questions {
		selected := s.answers[i]
		item := domain.ReviewItem{
			Question:       q,
			SelectedIndex:  selected,
			SelectedAnswer: domain.NotAnswered,
			CorrectAnswer:  q.Options[q.CorrectAnswerIndex],
			Correct:        selected == q.CorrectAnswerIndex,
		}
		if selected != domain.Unanswered {
			item.SelectedAnswer = q.Options[selected]
		}
		items[i] = item
	}
	accuracy := domain.Accuracy(s.score, len(s.questions))
	return domain.Result{
		Score:              s.score,
		Total:              len(s.questions),
		Answered:           s.answered(),
		Accuracy:           accuracy,
		Grade:              domain.Grade(accuracy),
		Rating:             domain.Rating(accuracy),
		Message:            domain.PerformanceMessage(accuracy),
		Elapsed:            s.elapsed,
		AveragePerQuestion: domain.AveragePerQuestion(s.elapsed, len(s.questions)),
		Items:              items,
	}, nil
}

func (s Session) requireInProgress(op string) error {
	if s.status != domain.InProgress {
		return &domain.TransitionError{Op: op, Status: s.status}
	}
	return nil
}
