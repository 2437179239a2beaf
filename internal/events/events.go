package events

import (
	"context"
	"time"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// CartEvent describes one cart mutation after its remote mirror ran.
type CartEvent struct {
	SessionID string    `json:"session_id"`
	Op        string    `json:"op"` // add|update|remove|clear|sync
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Count     int       `json:"count"`
	Total     string    `json:"total"`
	Mirrored  bool      `json:"mirrored"`
	MirrorErr string    `json:"mirror_err,omitempty"`
	At        time.Time `json:"at"`
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
