// Package messaging defines the event publishing contract used by the catalog.
package messaging

import (
	"context"
)

const (
	// ProductsSubjects matches every product change subject; used as the stream filter.
	ProductsSubjects       = "catalog.products.>"
	ProductsCreatedSubject = "catalog.products.created"
	ProductsUpdatedSubject = "catalog.products.updated"
	ProductsDeletedSubject = "catalog.products.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
