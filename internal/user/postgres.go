package user

import (
	"context"
	"database/sql"

	"textok-auth/internal/db"
	"textok-auth/internal/token"
)

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `
	id, email, username,
	COALESCE(nickname, ''), COALESCE(password, ''),
	role, date_of_birth, COALESCE(gender, ''),
	COALESCE(profile_img_url, ''),
	created_at, updated_at
`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(
		&u.ID, &u.Email, &u.Username,
		&u.Nickname, &u.Password,
		&role, &u.DateOfBirth, &u.Gender,
		&u.ProfileImgURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = token.Role(role)
	return &u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username))
}

func (r *PostgresRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE nickname = $1
		)
	`, nickname).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, username, nickname, password, role, date_of_birth, gender, profile_img_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at, updated_at
	`,
		u.Email, u.Username, u.Nickname, u.Password,
		string(u.Role), u.DateOfBirth, u.Gender, u.ProfileImgURL,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2,
		    nickname = NULLIF($3, ''),
		    date_of_birth = $4,
		    gender = NULLIF($5, ''),
		    profile_img_url = NULLIF($6, ''),
		    updated_at = NOW()
		WHERE id = $1
	`,
		u.ID, u.Email, u.Nickname, u.DateOfBirth, u.Gender, u.ProfileImgURL,
	)
	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash)
	return err
}
