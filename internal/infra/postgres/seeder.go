package postgres

import (
	"context"
	"fmt"

	"syntax-quiz/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID   int             `bun:"id,pk"`
	Data domain.Question `bun:"data,type:jsonb"`
}

// SeedQuestions upserts questions by id. The questions are validated first so a
// broken bank never reaches the table.
func SeedQuestions(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}
	rows := make([]questionRow, len(questions))
	for i, q := range questions {
		rows[i] = questionRow{ID: q.ID, Data: q}
	}
	res, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(rows), nil
	}
	return int(n), nil
}
