package storage

import "context"

// FileStorage deletes user-owned objects during account removal.
// DeleteFile failures are fatal to the calling operation; DeleteTTSFile
// is treated as best-effort by callers.
type FileStorage interface {
	DeleteFile(ctx context.Context, url string) error
	DeleteTTSFile(ctx context.Context, url string) error
}
