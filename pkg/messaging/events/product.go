package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
)

// Action names the kind of change a ProductChangedEvent describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ProductSnapshot is the product state after the change. Nil for deletions.
type ProductSnapshot struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// ProductChangedEvent is published after every successful catalog mutation.
// Carrier holds the W3C trace context of the originating request.
type ProductChangedEvent struct {
	Carrier    map[string]string `json:"carrier,omitempty"`
	Action     Action            `json:"action"`
	ProductID  string            `json:"product_id"`
	Product    *ProductSnapshot  `json:"product,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func (e ProductChangedEvent) Subject() string {
	switch e.Action {
	case ActionCreated:
		return messaging.ProductsCreatedSubject
	case ActionDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsUpdatedSubject
	}
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
