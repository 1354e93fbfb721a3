package events

import (
	"context"

	"github.com/google/uuid"
)

type DeletionKind string

const (
	KindShorlogDeleted DeletionKind = "shorlog_deleted"
	KindBlogDeleted    DeletionKind = "blog_deleted"
)

// DeletionEvent asks the search-index side to drop a document. Consumers
// process the stream asynchronously; duplicates are harmless.
type DeletionEvent struct {
	ID       string
	Kind     DeletionKind
	TargetID int64
}

func NewDeletionEvent(kind DeletionKind, targetID int64) DeletionEvent {
	return DeletionEvent{
		ID:       uuid.NewString(),
		Kind:     kind,
		TargetID: targetID,
	}
}

// Publisher hands events to the delivery channel. A nil return means
// "accepted for delivery", not "index updated".
type Publisher interface {
	PublishDeletion(ctx context.Context, event DeletionEvent) error
}
