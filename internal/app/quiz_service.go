package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"syntax-quiz/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts how session state is stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, state domain.SessionState) error
	// Load returns domain.ErrSessionNotFound for unknown IDs.
	Load(ctx context.Context, sessionID string) (domain.SessionState, error)
	Delete(ctx context.Context, sessionID string) error
}

// QuestionRepository is the immutable question bank.
type QuestionRepository interface {
	Filter(criteria domain.Criteria) []domain.Question
	Facets() domain.Facets
}

// QuizService contains the quiz use cases for presentation layers that
// address sessions by ID.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionRepository
	now       func() time.Time
	newID     func() string

	locks sync.Map // sessionID -> *sync.Mutex
}

func NewQuizService(store SessionRepository, questions QuestionRepository) *QuizService {
	return NewQuizServiceWithClock(store, questions, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(store SessionRepository, questions QuestionRepository, now func() time.Time) *QuizService {
	return &QuizService{
		sessions:  store,
		questions: questions,
		now:       now,
		newID:     uuid.NewString,
	}
}

// Facets lists the filter values offered by the question bank.
func (s *QuizService) Facets() domain.Facets {
	return s.questions.Facets()
}

// Questions returns the questions matching criteria in bank order.
func (s *QuizService) Questions(criteria domain.Criteria) ([]domain.Question, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return s.questions.Filter(criteria), nil
}

// Create filters the bank and stores a new NotStarted session over the result.
func (s *QuizService) Create(ctx context.Context, criteria domain.Criteria) (domain.Snapshot, error) {
	questions, err := s.Questions(criteria)
	if err != nil {
		return domain.Snapshot{}, err
	}
	session, err := NewSessionWithClock(questions, s.now)
	if err != nil {
		return domain.Snapshot{}, err
	}
	id := s.newID()
	if err := s.sessions.Save(ctx, id, session.State()); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshotOf(id, session), nil
}

func (s *QuizService) Start(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, Session.Start)
}

func (s *QuizService) SelectAnswer(ctx context.Context, sessionID string, answerIndex int) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(session Session) (Session, error) {
		return session.SelectAnswer(answerIndex)
	})
}

func (s *QuizService) Next(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, Session.Next)
}

func (s *QuizService) Previous(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, Session.Previous)
}

func (s *QuizService) GoTo(ctx context.Context, sessionID string, index int) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(session Session) (Session, error) {
		return session.GoTo(index)
	})
}

func (s *QuizService) Complete(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, Session.Complete)
}

// Reset restarts the session over the same question set.
func (s *QuizService) Reset(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	return s.apply(ctx, sessionID, func(session Session) (Session, error) {
		return session.Reset(), nil
	})
}

// Snapshot returns the current view, with a live elapsed time while in progress.
func (s *QuizService) Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snapshotOf(sessionID, session), nil
}

// Review returns the per-question results of a completed session.
func (s *QuizService) Review(ctx context.Context, sessionID string) (domain.Result, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	return session.Review()
}

// Discard drops a session and its lock.
func (s *QuizService) Discard(ctx context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()
	defer s.locks.Delete(sessionID)
	return s.sessions.Delete(ctx, sessionID)
}

// apply runs one transition as load, transition, save under the session's lock.
// A failed transition leaves the stored state untouched. The lock of a session
// that no longer exists is dropped.
func (s *QuizService) apply(ctx context.Context, sessionID string, transition func(Session) (Session, error)) (domain.Snapshot, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.locks.Delete(sessionID)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	next, err := transition(session)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.sessions.Save(ctx, sessionID, next.State()); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshotOf(sessionID, next), nil
}

func (s *QuizService) load(ctx context.Context, sessionID string) (Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	return RestoreSession(state, s.now)
}

func (s *QuizService) lock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func snapshotOf(sessionID string, session Session) domain.Snapshot {
	snap := session.Snapshot()
	snap.SessionID = sessionID
	return snap
}
