// Package events publishes domain events about audited mutations.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event describes one audited mutation.
type Event struct {
	Action       string         `json:"action"`
	ActorID      string         `json:"actor_id"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Changes      map[string]any `json:"changes,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// RoutingKey is the key the event is published under, e.g. "category.delete".
func (e Event) RoutingKey() string {
	return e.ResourceType + "." + e.Action
}

// ToJSON encodes the event as a message body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }
