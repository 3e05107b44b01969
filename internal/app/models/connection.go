package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the lifecycle state of a connection request.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Active reports whether the status counts toward the one-per-pair limit.
func (s ConnectionStatus) Active() bool {
	return s == ConnectionPending || s == ConnectionAccepted
}

// DefaultConnectionMessage is used when the sender does not write one.
const DefaultConnectionMessage = "Hi, I'd like to connect with you."

// ConnectionRequest is one relationship record between two principals.
type ConnectionRequest struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Sender    PrincipalRef     `json:"sender"`
	Receiver  PrincipalRef     `json:"receiver"`
	Status    ConnectionStatus `json:"status" db:"status"`
	Message   string           `json:"message" db:"message"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`
}

// Counterpart returns the party that is not userID.
func (c *ConnectionRequest) Counterpart(userID uuid.UUID) PrincipalRef {
	if c.Sender.ID == userID {
		return c.Receiver
	}
	return c.Sender
}

// ConnectionStatusView answers "where do I stand with this user".
type ConnectionStatusView struct {
	Status     string `json:"status"`
	CanConnect bool   `json:"canConnect"`
	IsPending  bool   `json:"isPending"`
	IsSender   bool   `json:"isSender"`
}

// ConnectionStatusNone is reported when the pair has no record at all.
const ConnectionStatusNone = "none"
