package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned by Require when no live record exists.
var ErrNoSession = errors.New("session: no session")

// Store maps a user id to that user's single current refresh token.
// Saving always replaces the previous record: one live session per user,
// last login wins. Expiry is store-managed via TTL.
type Store interface {
	Save(ctx context.Context, userID int64, refreshToken string) error
	Find(ctx context.Context, userID int64) (string, bool, error)
	Require(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}
