package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const TypeReceiptCreated = "receipt.created"

// ReceiptCreated is emitted once a receipt and its items are committed
type ReceiptCreated struct {
	Type        string    `json:"type"`
	ReceiptID   uuid.UUID `json:"receipt_id"`
	UserID      uuid.UUID `json:"user_id"`
	PaymentType string    `json:"payment_type"`
	Total       string    `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher delivers receipt events to interested parties
type Publisher interface {
	Publish(ctx context.Context, event ReceiptCreated) error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, ReceiptCreated) error { return nil }

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event ReceiptCreated) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
