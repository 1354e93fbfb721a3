package content

import "context"

// Repository exposes the ownership queries the account-deletion flow
// needs: which content rows and which generated audio files belong to a
// user. Everything else about content lives with the content services.
type Repository interface {
	FindTTSURLsByUserID(ctx context.Context, userID int64) ([]string, error)
	FindShorlogIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
	FindBlogIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
}
