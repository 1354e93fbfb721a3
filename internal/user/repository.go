package user

import "context"

// Repository persists accounts. Finders return (nil, nil) when no row
// matches; callers decide whether absence is an error.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// DeletionRepository performs the final, authoritative removal of every
// account-owned row. It runs last in the hard-delete sequence.
type DeletionRepository interface {
	DeleteUserCompletely(ctx context.Context, userID int64) error
}
