package content

import (
	"context"

	"textok-auth/internal/db"
)

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindTTSURLsByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tts_url
		FROM shorlogs
		WHERE user_id = $1 AND tts_url IS NOT NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func (r *PostgresRepository) FindShorlogIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	return r.findIDs(ctx, `SELECT id FROM shorlogs WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) FindBlogIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	return r.findIDs(ctx, `SELECT id FROM blogs WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) findIDs(ctx context.Context, query string, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
