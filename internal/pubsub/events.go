package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Event[T] binds a topic name to its payload type.
type Event[T any] struct {
	name string
}

var (
	topicsMu sync.Mutex
	topics   = map[string]string{}
)

// NewEvent defines a typed event. Topic names must be unique; defining one
// twice is a programming error and panics.
func NewEvent[T any](name, description string) Event[T] {
	topicsMu.Lock()
	defer topicsMu.Unlock()
	if _, dup := topics[name]; dup {
		panic(fmt.Sprintf("pubsub: topic %q defined twice", name))
	}
	topics[name] = description
	return Event[T]{name: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.name
}

// Topic describes a defined event.
type Topic struct {
	Name        string
	Description string
}

// Topics lists every defined event, sorted by name.
func Topics() []Topic {
	topicsMu.Lock()
	defer topicsMu.Unlock()
	out := make([]Topic, 0, len(topics))
	for name, desc := range topics {
		out = append(out, Topic{Name: name, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Publish sends a typed event about userID.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.name, err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.name,
		UserID:  userID,
		Payload: data,
	})
}

// Subscribe delivers decoded payloads of event to handler.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, userID string, payload T) error) error {
	return s.Subscribe(ctx, event.name, func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.name, err)
		}
		return handler(ctx, msg.UserID, payload)
	})
}
