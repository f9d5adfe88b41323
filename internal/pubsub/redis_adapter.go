// Package pubsub implements cross-instance broadcast over Redis pub/sub:
// when more than one engine process serves the same world (e.g. behind a
// load balancer), each instance publishes tick/structure notifications to a
// shared channel so every other instance's WebSocket hub can forward them
// to its own connected clients, without clients caring which instance they
// landed on.
//
// Grounded on the sibling mud-platform-backend service's redis_adapter.go,
// adapted from broadcasting to connected characters to broadcasting grid
// deltas and structure events to connected dig/raise/pour clients.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// BroadcastMessage is one cross-instance notification.
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	SourceID  string      `json:"source_id"`  // instance that published this message
	TargetIDs []uuid.UUID `json:"target_ids"` // session IDs to route to, empty means all
}

// RedisAdapter fans a message out to every engine instance subscribed to a
// channel, skipping messages it published itself.
type RedisAdapter struct {
	client     *redis.Client
	instanceID string
	pubsub     *redis.PubSub
	handlers   map[string]func(msg *BroadcastMessage)
}

// NewRedisAdapter builds an adapter identified by instanceID (typically a
// hostname or process UUID), used to recognize and skip the adapter's own
// publishes once they loop back through the channel.
func NewRedisAdapter(client *redis.Client, instanceID string) *RedisAdapter {
	return &RedisAdapter{
		client:     client,
		instanceID: instanceID,
		handlers:   make(map[string]func(msg *BroadcastMessage)),
	}
}

// Subscribe joins channel and starts the background goroutine that
// delivers incoming messages to registered handlers.
func (r *RedisAdapter) Subscribe(ctx context.Context, channel string) error {
	r.pubsub = r.client.Subscribe(ctx, channel)

	if _, err := r.pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to channel %s: %w", channel, err)
	}

	log.Info().Str("channel", channel).Str("instance", r.instanceID).Msg("subscribed to broadcast channel")
	go r.processMessages(ctx)

	return nil
}

// Publish sends msg to every instance subscribed to channel, stamping it
// with this adapter's instance ID.
func (r *RedisAdapter) Publish(ctx context.Context, channel string, msg *BroadcastMessage) error {
	msg.SourceID = r.instanceID

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal broadcast message: %w", err)
	}

	return r.client.Publish(ctx, channel, data).Err()
}

// RegisterHandler attaches handler to every future message of the given
// type. Only one handler per type is kept; a later call replaces an
// earlier one.
func (r *RedisAdapter) RegisterHandler(msgType string, handler func(msg *BroadcastMessage)) {
	r.handlers[msgType] = handler
}

func (r *RedisAdapter) processMessages(ctx context.Context) {
	ch := r.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg BroadcastMessage
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				log.Warn().Err(err).Msg("failed to unmarshal broadcast message")
				continue
			}
			if msg.SourceID == r.instanceID {
				continue
			}
			if handler, ok := r.handlers[msg.Type]; ok {
				handler(&msg)
			}
		}
	}
}

// Close releases the underlying subscription, if one was ever made.
func (r *RedisAdapter) Close() error {
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}

// BroadcastToSessions is a helper that targets a specific set of session
// IDs instead of every subscriber.
func (r *RedisAdapter) BroadcastToSessions(ctx context.Context, channel string, sessionIDs []uuid.UUID, msgType string, data interface{}) error {
	msg := &BroadcastMessage{
		Type:      msgType,
		Data:      data,
		TargetIDs: sessionIDs,
	}
	return r.Publish(ctx, channel, msg)
}
