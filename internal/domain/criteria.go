package domain

import "fmt"

// Wildcard matches every value of a facet.
const Wildcard = "All"

// Criteria selects questions by language, difficulty and category.
// Each facet is either Wildcard (or empty) or an exact, case-sensitive value.
type Criteria struct {
	Language   string `json:"language" yaml:"language"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
	Category   string `json:"category" yaml:"category"`
}

// AllCriteria matches the whole repository.
func AllCriteria() Criteria {
	return Criteria{Language: Wildcard, Difficulty: Wildcard, Category: Wildcard}
}

// Matches reports whether q satisfies every facet.
func (c Criteria) Matches(q Question) bool {
	return facetMatches(c.Language, q.Language) &&
		facetMatches(c.Difficulty, string(q.Difficulty)) &&
		facetMatches(c.Category, q.Category)
}

// Validate rejects a difficulty facet that is neither Wildcard nor a known difficulty.
func (c Criteria) Validate() error {
	if isWildcard(c.Difficulty) || Difficulty(c.Difficulty).Valid() {
		return nil
	}
	return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidCriteria, c.Difficulty)
}

func facetMatches(want, got string) bool {
	return isWildcard(want) || want == got
}

func isWildcard(v string) bool {
	return v == "" || v == Wildcard
}
