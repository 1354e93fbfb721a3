package db

import (
	"context"
	"database/sql"
)

// Content tables only carry the columns the deletion flow touches; the
// content services own the rest of their schema.
const migration = `
CREATE TABLE IF NOT EXISTS users (
    id bigserial PRIMARY KEY,
    email text NOT NULL,
    username text NOT NULL,
    nickname text,
    password text,
    role text NOT NULL DEFAULT 'USER',
    date_of_birth date,
    gender text,
    profile_img_url text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique
ON users (username);

CREATE UNIQUE INDEX IF NOT EXISTS users_nickname_unique
ON users (nickname)
WHERE nickname IS NOT NULL;

CREATE TABLE IF NOT EXISTS shorlogs (
    id bigserial PRIMARY KEY,
    user_id bigint NOT NULL REFERENCES users(id),
    tts_url text,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS shorlogs_user_id_idx ON shorlogs (user_id);

CREATE TABLE IF NOT EXISTS blogs (
    id bigserial PRIMARY KEY,
    user_id bigint NOT NULL REFERENCES users(id),
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS blogs_user_id_idx ON blogs (user_id);

CREATE TABLE IF NOT EXISTS comments (
    id bigserial PRIMARY KEY,
    user_id bigint NOT NULL REFERENCES users(id),
    target_type text NOT NULL,
    target_id bigint NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS comments_user_id_idx ON comments (user_id);

CREATE TABLE IF NOT EXISTS likes (
    id bigserial PRIMARY KEY,
    user_id bigint NOT NULL REFERENCES users(id),
    target_type text NOT NULL,
    target_id bigint NOT NULL
);

CREATE INDEX IF NOT EXISTS likes_user_id_idx ON likes (user_id);

CREATE TABLE IF NOT EXISTS follows (
    id bigserial PRIMARY KEY,
    follower_id bigint NOT NULL REFERENCES users(id),
    following_id bigint NOT NULL REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS follows_follower_id_idx ON follows (follower_id);
CREATE INDEX IF NOT EXISTS follows_following_id_idx ON follows (following_id);
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}
