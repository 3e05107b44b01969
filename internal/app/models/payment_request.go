package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment request.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCompleted PaymentStatus = "completed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentApproved, PaymentRejected},
	PaymentApproved: {PaymentCompleted},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
// rejected and completed are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentRequest is an alumni pledge that the student approves before the
// out-of-band transfer is reconciled by transaction id.
type PaymentRequest struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	SenderID      uuid.UUID     `json:"senderId" db:"sender_id"`
	RecipientID   uuid.UUID     `json:"recipientId" db:"recipient_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Message       string        `json:"message" db:"message"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID *string       `json:"transactionId" db:"transaction_id"`
	ApprovedAt    *time.Time    `json:"approvedAt" db:"approved_at"`
	CompletedAt   *time.Time    `json:"completedAt" db:"completed_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`

	// Populated by listings
	Sender    *PrincipalRef `json:"sender,omitempty"`
	Recipient *PrincipalRef `json:"recipient,omitempty"`
}

// PaymentTransition describes one guarded status change.
type PaymentTransition struct {
	From          PaymentStatus
	To            PaymentStatus
	At            time.Time
	TransactionID *string
}

// PaymentDetails is what an alumni sees once the student approved.
type PaymentDetails struct {
	UPIID         string  `json:"upiId"`
	Amount        float64 `json:"amount"`
	RecipientName string  `json:"recipientName"`
}

// DashboardStats are the alumni dashboard counters.
type DashboardStats struct {
	Scholarships    int64 `json:"scholarships"`
	PendingRequests int64 `json:"pendingRequests"`
	Mentored        int64 `json:"mentored"`
}

// NeedDrift is a student whose stored financial need disagrees with the ledger.
type NeedDrift struct {
	StudentID      uuid.UUID `json:"studentId"`
	DisplayName    string    `json:"username"`
	Recorded       *float64  `json:"recorded"`
	Expected       *float64  `json:"expected"`
	CompletedTotal float64   `json:"completedTotal"`
}
