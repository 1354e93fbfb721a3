package user

import (
	"context"
	"fmt"

	"textok-auth/internal/db"
)

// PostgresDeletionRepository removes every row an account owns in one
// transaction. External side effects (files, events, session) must
// already have been triggered by the time this runs: this step destroys
// the identity itself and with it any chance to retry the others.
type PostgresDeletionRepository struct {
	db *db.DB
}

func NewPostgresDeletionRepository(db *db.DB) *PostgresDeletionRepository {
	return &PostgresDeletionRepository{db: db}
}

func (r *PostgresDeletionRepository) DeleteUserCompletely(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("user deletion: begin: %w", err)
	}
	defer tx.Rollback()

	// Child rows first, the user row last.
	statements := []string{
		`DELETE FROM comments WHERE user_id = $1`,
		`DELETE FROM likes WHERE user_id = $1`,
		`DELETE FROM follows WHERE follower_id = $1 OR following_id = $1`,
		`DELETE FROM shorlogs WHERE user_id = $1`,
		`DELETE FROM blogs WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("user deletion: %w", err)
		}
	}

	return tx.Commit()
}
