package app_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"syntax-quiz/internal/app"
	"syntax-quiz/internal/domain"
)

func TestScenarioOneCorrectOneWrong(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB()))

	session = must(t)(session.SelectAnswer(2))
	session = must(t)(session.Next())
	session = must(t)(session.SelectAnswer(0))
	session = must(t)(session.Complete())

	score, ok := session.Score()
	if !ok || score != 1 {
		t.Fatalf("expected score 1, got %d (ok=%v)", score, ok)
	}
	if session.Status() != domain.Completed {
		t.Fatalf("expected completed, got %s", session.Status())
	}
}

func TestCreateEmptyFails(t *testing.T) {
	if _, err := app.NewSession(nil); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected ErrEmptyQuestionSet, got %v", err)
	}
	if _, err := app.NewSession([]domain.Question{}); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected ErrEmptyQuestionSet, got %v", err)
	}
}

func TestNewSessionIsNotStarted(t *testing.T) {
	session := newSession(t, questionA(), questionB())

	if session.Status() != domain.NotStarted {
		t.Fatalf("expected not started, got %s", session.Status())
	}
	if !reflect.DeepEqual(session.SelectedAnswers(), []int{domain.Unanswered, domain.Unanswered}) {
		t.Fatalf("expected all slots unanswered, got %v", session.SelectedAnswers())
	}
	if _, ok := session.Score(); ok {
		t.Fatalf("score must not be available before completion")
	}
	if !session.StartedAt().IsZero() || session.Elapsed() != 0 {
		t.Fatalf("expected no start time and zero elapsed")
	}
}

func TestSelectAnswerOutOfRange(t *testing.T) {
	session := mustStart(t, newSession(t, questionA()))

	_, err := session.SelectAnswer(5)
	if !errors.Is(err, domain.ErrInvalidAnswerIndex) {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}
	var idx *domain.IndexError
	if !errors.As(err, &idx) || idx.Index != 5 || idx.Len != 4 {
		t.Fatalf("expected index error 5/4, got %v", err)
	}
	if _, err := session.SelectAnswer(-1); !errors.Is(err, domain.ErrInvalidAnswerIndex) {
		t.Fatalf("expected ErrInvalidAnswerIndex for -1, got %v", err)
	}
}

func TestOperationsRequireInProgress(t *testing.T) {
	notStarted := newSession(t, questionA(), questionB())
	completed := must(t)(mustStart(t, notStarted).Complete())

	ops := map[string]func(app.Session) (app.Session, error){
		"select":   func(s app.Session) (app.Session, error) { return s.SelectAnswer(0) },
		"next":     app.Session.Next,
		"previous": app.Session.Previous,
		"goto":     func(s app.Session) (app.Session, error) { return s.GoTo(1) },
		"complete": app.Session.Complete,
	}
	for name, op := range ops {
		for _, session := range []app.Session{notStarted, completed} {
			if _, err := op(session); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("%s in %s: expected ErrInvalidTransition, got %v", name, session.Status(), err)
			}
		}
	}

	running := mustStart(t, notStarted)
	if _, err := running.Start(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double start: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := completed.Start(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("start after completion: expected ErrInvalidTransition, got %v", err)
	}
}

func TestScoreMatchesCorrectCount(t *testing.T) {
	questions := []domain.Question{questionA(), questionB(), questionC()}
	cases := [][]int{
		{2, 1, 0},
		{0, 0, 0},
		{2, 0, 3},
		{1, 1, 1},
	}
	for _, picks := range cases {
		session := mustStart(t, newSession(t, questions...))
		want := 0
		for i, pick := range picks {
			if pick == questions[i].CorrectAnswerIndex {
				want++
			}
			session = must(t)(session.SelectAnswer(pick))
			session = must(t)(session.Next())
		}
		session = must(t)(session.Complete())
		if got, _ := session.Score(); got != want {
			t.Fatalf("picks %v: score %d, want %d", picks, got, want)
		}
	}
}

func TestCompleteWithNoAnswersScoresZero(t *testing.T) {
	session := must(t)(mustStart(t, newSession(t, questionA(), questionB())).Complete())

	score, ok := session.Score()
	if !ok || score != 0 {
		t.Fatalf("expected score 0, got %d (ok=%v)", score, ok)
	}
}

func TestReselectKeepsLastChoice(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB()))

	session = must(t)(session.SelectAnswer(0))
	session = must(t)(session.SelectAnswer(3))

	if got := session.SelectedAnswers(); !reflect.DeepEqual(got, []int{3, domain.Unanswered}) {
		t.Fatalf("expected [3 -1], got %v", got)
	}
}

func TestNavigationClamps(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB(), questionC()))

	for i := 0; i < 5; i++ {
		session = must(t)(session.Previous())
		if session.CurrentIndex() != 0 {
			t.Fatalf("previous moved below 0: %d", session.CurrentIndex())
		}
	}
	for i := 0; i < 5; i++ {
		session = must(t)(session.Next())
	}
	if session.CurrentIndex() != 2 {
		t.Fatalf("expected clamp at 2, got %d", session.CurrentIndex())
	}
	if session.CurrentQuestion().ID != questionC().ID {
		t.Fatalf("expected current question C, got %d", session.CurrentQuestion().ID)
	}
}

func TestGoTo(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB(), questionC()))

	session = must(t)(session.GoTo(2))
	if session.CurrentIndex() != 2 {
		t.Fatalf("expected index 2, got %d", session.CurrentIndex())
	}
	for _, bad := range []int{-1, 3, 10} {
		if _, err := session.GoTo(bad); !errors.Is(err, domain.ErrOutOfRange) {
			t.Fatalf("GoTo(%d): expected ErrOutOfRange, got %v", bad, err)
		}
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	clock := newFakeClock()
	session, err := app.NewSessionWithClock([]domain.Question{questionA(), questionB()}, clock.Now)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	before := mustStart(t, session)
	snapshot := before.Snapshot()

	after := must(t)(before.SelectAnswer(1))
	after = must(t)(after.Next())
	_ = must(t)(after.Complete())

	if !reflect.DeepEqual(before.Snapshot(), snapshot) {
		t.Fatalf("receiver changed: before %+v now %+v", snapshot, before.Snapshot())
	}
	if after.SelectedAnswers()[0] != 1 || after.CurrentIndex() != 1 {
		t.Fatalf("unexpected new state %+v", after.Snapshot())
	}
}

func TestFailedTransitionKeepsState(t *testing.T) {
	session := mustStart(t, newSession(t, questionA()))
	session = must(t)(session.SelectAnswer(1))

	got, err := session.SelectAnswer(9)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !reflect.DeepEqual(got.SelectedAnswers(), []int{1}) {
		t.Fatalf("failed select changed answers: %v", got.SelectedAnswers())
	}
}

func TestElapsedLiveThenFrozen(t *testing.T) {
	clock := newFakeClock()
	session, err := app.NewSessionWithClock([]domain.Question{questionA()}, clock.Now)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	session = mustStart(t, session)

	clock.Advance(3 * time.Second)
	if got := session.Elapsed(); got != 3*time.Second {
		t.Fatalf("expected live elapsed 3s, got %v", got)
	}

	clock.Advance(2 * time.Second)
	session = must(t)(session.Complete())

	clock.Advance(time.Minute)
	if got := session.Elapsed(); got != 5*time.Second {
		t.Fatalf("expected frozen elapsed 5s, got %v", got)
	}
	if got := session.Snapshot().Elapsed; got != 5*time.Second {
		t.Fatalf("snapshot elapsed %v, want 5s", got)
	}
}

func TestResetAfterComplete(t *testing.T) {
	questions := []domain.Question{questionA(), questionB()}
	session := mustStart(t, newSession(t, questions...))
	session = must(t)(session.SelectAnswer(2))
	session = must(t)(session.Next())
	session = must(t)(session.Complete())

	reset := session.Reset()

	if reset.Status() != domain.NotStarted {
		t.Fatalf("expected not started, got %s", reset.Status())
	}
	if _, ok := reset.Score(); ok {
		t.Fatalf("score should be cleared")
	}
	if reset.CurrentIndex() != 0 || reset.Elapsed() != 0 || !reset.StartedAt().IsZero() {
		t.Fatalf("reset left stale fields: %+v", reset.Snapshot())
	}
	if !reflect.DeepEqual(reset.SelectedAnswers(), []int{domain.Unanswered, domain.Unanswered}) {
		t.Fatalf("answers not cleared: %v", reset.SelectedAnswers())
	}
	if !reflect.DeepEqual(reset.Questions(), questions) {
		t.Fatalf("reset changed the question set")
	}
	if _, err := reset.Start(); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestSnapshotProgress(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB(), questionC()))
	session = must(t)(session.SelectAnswer(2))

	snap := session.Snapshot()
	if snap.Answered != 1 || snap.Progress != 33 || snap.Total != 3 {
		t.Fatalf("unexpected progress %+v", snap)
	}
	if snap.Score != nil {
		t.Fatalf("score must be absent while in progress")
	}
	if snap.Current.ID != questionA().ID {
		t.Fatalf("unexpected current question %d", snap.Current.ID)
	}
	if snap.Position != 33 {
		t.Fatalf("expected position 33 on the first of three, got %d", snap.Position)
	}
	if last := must(t)(session.GoTo(2)).Snapshot(); last.Position != 100 || last.Progress != 33 {
		t.Fatalf("expected position 100 and progress 33 on the last question, got %+v", last)
	}
}

func TestReview(t *testing.T) {
	clock := newFakeClock()
	session, err := app.NewSessionWithClock([]domain.Question{questionA(), questionB()}, clock.Now)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := session.Review(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("review before completion: expected ErrInvalidTransition, got %v", err)
	}

	session = mustStart(t, session)
	session = must(t)(session.SelectAnswer(2))
	clock.Advance(20 * time.Second)
	session = must(t)(session.Complete())

	result, err := session.Review()
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if result.Score != 1 || result.Total != 2 || result.Answered != 1 {
		t.Fatalf("unexpected totals %+v", result)
	}
	if result.Accuracy != 50 || result.Grade != "D" || result.Rating != "Needs Work" {
		t.Fatalf("unexpected grading %+v", result)
	}
	if result.Elapsed != 20*time.Second || result.AveragePerQuestion != 10*time.Second {
		t.Fatalf("unexpected timing %+v", result)
	}
	if !result.Items[0].Correct || result.Items[0].SelectedAnswer != "c" {
		t.Fatalf("unexpected first item %+v", result.Items[0])
	}
	second := result.Items[1]
	if second.Correct || second.SelectedAnswer != domain.NotAnswered || second.CorrectAnswer != "b" {
		t.Fatalf("unexpected second item %+v", second)
	}
}

func TestRestoreSessionRoundTrip(t *testing.T) {
	session := mustStart(t, newSession(t, questionA(), questionB()))
	session = must(t)(session.SelectAnswer(1))
	session = must(t)(session.Next())

	restored, err := app.RestoreSession(session.State(), nil)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(restored.State(), session.State()) {
		t.Fatalf("restored state differs: %+v vs %+v", restored.State(), session.State())
	}

	broken := session.State()
	broken.Answers = []int{1}
	if _, err := app.RestoreSession(broken, nil); err == nil {
		t.Fatalf("expected error for mismatched answers")
	}
	broken = session.State()
	broken.Answers = []int{7, domain.Unanswered}
	if _, err := app.RestoreSession(broken, nil); !errors.Is(err, domain.ErrInvalidAnswerIndex) {
		t.Fatalf("expected ErrInvalidAnswerIndex, got %v", err)
	}
}

func TestRestoreSessionRejectsInvalidQuestions(t *testing.T) {
	corrupt := domain.SessionState{
		Questions: []domain.Question{
			{ID: 1, Difficulty: domain.Beginner, Options: []string{"a", "b"}, CorrectAnswerIndex: 7},
		},
		Answers: []int{0},
		Status:  domain.Completed,
	}
	if _, err := app.RestoreSession(corrupt, nil); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}

	noOptions := questionA()
	noOptions.Options = nil
	if _, err := app.NewSession([]domain.Question{questionA(), noOptions}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for a question without options, got %v", err)
	}
	if _, err := app.NewSession([]domain.Question{questionA(), questionA()}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for duplicate ids, got %v", err)
	}
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newSession(t *testing.T, questions ...domain.Question) app.Session {
	t.Helper()
	session, err := app.NewSession(questions)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func mustStart(t *testing.T, session app.Session) app.Session {
	t.Helper()
	return must(t)(session.Start())
}

func must(t *testing.T) func(app.Session, error) app.Session {
	return func(session app.Session, err error) app.Session {
		t.Helper()
		if err != nil {
			t.Fatalf("transition failed: %v", err)
		}
		return session
	}
}

func questionA() domain.Question {
	return domain.Question{
		ID:                 1,
		Language:           "JavaScript",
		Difficulty:         domain.Beginner,
		Category:           "Data Types",
		Prompt:             "What will be the output of the following code?",
		CodeSnippet:        "console.log(typeof null);",
		Options:            []string{"a", "b", "c", "d"},
		CorrectAnswerIndex: 2,
	}
}

func questionB() domain.Question {
	return domain.Question{
		ID:                 2,
		Language:           "Python",
		Difficulty:         domain.Intermediate,
		Category:           "Data Structures",
		Prompt:             "What is the output of this Python code?",
		Options:            []string{"a", "b", "c", "d"},
		CorrectAnswerIndex: 1,
	}
}

func questionC() domain.Question {
	return domain.Question{
		ID:                 3,
		Language:           "Go",
		Difficulty:         domain.Advanced,
		Category:           "Concurrency",
		Prompt:             "Which statement closes a channel?",
		Options:            []string{"close(ch)", "ch.Close()", "delete(ch)", "ch = nil"},
		CorrectAnswerIndex: 0,
	}
}
