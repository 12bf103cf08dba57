package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Submissions provides append-only form submission storage.
type Submissions struct {
	pool *pgxpool.Pool
}

func NewSubmissions(pool *pgxpool.Pool) *Submissions {
	return &Submissions{pool: pool}
}

// Insert appends one submission. Answers keep the field order the user
// answered in; they are stored as a JSON object.
func (s *Submissions) Insert(ctx context.Context, userID int64, username, formKey string, answers map[string]string) error {
	if s.pool == nil {
		return fmt.Errorf("submissions store not configured")
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO form_submissions (tg_user_id, username, form_key, data_json)
		VALUES ($1, $2, $3, $4)`,
		userID, username, formKey, payload,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}
