package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies outbox entries.
type NotificationType string

const (
	NotificationPaymentRequest   NotificationType = "payment_request"
	NotificationPaymentApproved  NotificationType = "payment_approved"
	NotificationPaymentCompleted NotificationType = "payment_completed"
	NotificationSystemMessage    NotificationType = "system_message"
)

// PartySystem marks notifications that no principal sent.
const PartySystem = "System"

// RelatedPaymentRequest is the RelatedKind of payment notifications.
const RelatedPaymentRequest = "PaymentRequest"

// NotificationParty identifies a recipient or sender by id and kind.
type NotificationParty struct {
	ID   uuid.UUID `json:"id"`
	Kind string    `json:"model"`
}

// PartyOf builds a party from a principal id and kind.
func PartyOf(id uuid.UUID, kind PrincipalKind) NotificationParty {
	return NotificationParty{ID: id, Kind: string(kind)}
}

// Notification is a fire-and-forget record read by the recipient on their next poll.
type Notification struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	Recipient   NotificationParty `json:"recipient"`
	Sender      NotificationParty `json:"sender"`
	Type        NotificationType  `json:"type" db:"type"`
	Title       string            `json:"title" db:"title"`
	Message     string            `json:"message" db:"message"`
	RelatedID   *uuid.UUID        `json:"relatedId" db:"related_id"`
	RelatedKind *string           `json:"relatedModel" db:"related_kind"`
	IsRead      bool              `json:"isRead" db:"is_read"`
	ActionURL   *string           `json:"actionUrl" db:"action_url"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
}

// NotificationFilter narrows a recipient's notification listing.
type NotificationFilter struct {
	UnreadOnly bool
	Offset     uint64
	Limit      int
}
