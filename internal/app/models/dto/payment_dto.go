package dto

import "github.com/yigit/scholarlink/internal/app/models"

// CreatePaymentRequest is sent by an alumni. Amount positivity is checked by the
// service so the failure carries the InvalidAmount error.
type CreatePaymentRequest struct {
	StudentID string  `json:"studentId" binding:"required,uuid"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message" binding:"max=1000"`
}

// ApprovePaymentRequest carries the student's UPI id
type ApprovePaymentRequest struct {
	UPIID string `json:"upiId" binding:"max=100"`
}

// RejectPaymentRequest carries an optional reason
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// CompletePaymentRequest carries the out-of-band transaction id
type CompletePaymentRequest struct {
	TransactionID string `json:"transactionId" binding:"max=100"`
}

// PaymentRequestListResponse wraps a list of payment requests
type PaymentRequestListResponse struct {
	PaymentRequests []models.PaymentRequest `json:"paymentRequests"`
}

// NeedReconciliationReport is the outcome of a financial-need reconciliation run
type NeedReconciliationReport struct {
	Checked int                `json:"checked"`
	Drifted []models.NeedDrift `json:"drifted"`
	Fixed   bool               `json:"fixed"`
}
