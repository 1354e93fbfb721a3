package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const deletionStream = "search:deletions"

// RedisPublisher appends deletion events to a redis stream. The stream
// gives at-least-once delivery to the index-cleanup consumers.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: deletionStream,
	}
}

func (p *RedisPublisher) PublishDeletion(ctx context.Context, event DeletionEvent) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":        event.ID,
			"kind":      string(event.Kind),
			"target_id": event.TargetID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("events: publish %s/%d: %w", event.Kind, event.TargetID, err)
	}
	return nil
}
