package memory

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"syntax-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_questions.yaml
var defaultQuestionsYAML []byte

// QuestionLoader fetches the question bank from a backing store (YAML file, Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository is the immutable in-memory question bank.
// It is loaded once and exposes no mutation.
type QuestionRepository struct {
	questions []domain.Question
	facets    domain.Facets
}

// NewQuestionRepository validates questions and takes a private copy.
func NewQuestionRepository(questions []domain.Question) (*QuestionRepository, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	owned := make([]domain.Question, len(questions))
	copy(owned, questions)
	return &QuestionRepository{questions: owned, facets: buildFacets(owned)}, nil
}

// LoadQuestionRepository builds the bank from loader.
func LoadQuestionRepository(ctx context.Context, loader QuestionLoader) (*QuestionRepository, error) {
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return NewQuestionRepository(questions)
}

// Filter returns the questions matching criteria, preserving bank order.
// An empty result is valid.
func (r *QuestionRepository) Filter(criteria domain.Criteria) []domain.Question {
	out := make([]domain.Question, 0, len(r.questions))
	for _, q := range r.questions {
		if criteria.Matches(q) {
			out = append(out, q)
		}
	}
	return out
}

// Facets lists filter values; each list starts with domain.Wildcard.
func (r *QuestionRepository) Facets() domain.Facets {
	return domain.Facets{
		Languages:    append([]string(nil), r.facets.Languages...),
		Difficulties: append([]string(nil), r.facets.Difficulties...),
		Categories:   append([]string(nil), r.facets.Categories...),
	}
}

func (r *QuestionRepository) Len() int { return len(r.questions) }

func buildFacets(questions []domain.Question) domain.Facets {
	facets := domain.Facets{
		Languages:    []string{domain.Wildcard},
		Difficulties: []string{domain.Wildcard},
		Categories:   []string{domain.Wildcard},
	}
	languages := make(map[string]struct{})
	categories := make(map[string]struct{})
	difficulties := make(map[domain.Difficulty]struct{})
	for _, q := range questions {
		if _, ok := languages[q.Language]; !ok {
			languages[q.Language] = struct{}{}
			facets.Languages = append(facets.Languages, q.Language)
		}
		if _, ok := categories[q.Category]; !ok {
			categories[q.Category] = struct{}{}
			facets.Categories = append(facets.Categories, q.Category)
		}
		difficulties[q.Difficulty] = struct{}{}
	}
	for _, d := range domain.Difficulties {
		if _, ok := difficulties[d]; ok {
			facets.Difficulties = append(facets.Difficulties, string(d))
		}
	}
	return facets
}

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// ParseYAML decodes a question bank document.
func ParseYAML(data []byte) ([]domain.Question, error) {
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return file.Questions, nil
}

// DefaultQuestions returns the built-in question bank.
func DefaultQuestions() ([]domain.Question, error) {
	return ParseYAML(defaultQuestionsYAML)
}

// StaticQuestionLoader is a simple loader backed by a slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}

// YAMLFileLoader reads the bank from a YAML file; an empty path means the built-in bank.
type YAMLFileLoader struct {
	path string
}

func NewYAMLFileLoader(path string) *YAMLFileLoader {
	return &YAMLFileLoader{path: path}
}

func (l *YAMLFileLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	if l.path == "" {
		return DefaultQuestions()
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseYAML(data)
}
