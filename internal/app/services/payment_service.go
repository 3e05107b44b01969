package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/auth"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/helpers"
	"github.com/yigit/scholarlink/internal/pkg/metrics"
)

const paymentWorkflow = "payment"

// Notification routes opened by the web client
const (
	StudentNotificationsURL = "/student/notifications"
	AlumniNotificationsURL  = "/alumni/notifications"
)

// PaymentService defines the interface for payment request operations
type PaymentService interface {
	CreateRequest(ctx context.Context, alumniID, studentID uuid.UUID, amount float64, message string) (*models.PaymentRequest, error)
	Approve(ctx context.Context, requestID, studentID uuid.UUID, upiID string) (*models.PaymentRequest, error)
	Reject(ctx context.Context, requestID, studentID uuid.UUID, reason string) (*models.PaymentRequest, error)
	Complete(ctx context.Context, requestID, alumniID uuid.UUID, transactionID string) (*models.PaymentRequest, error)
	GetDetailsForAlumni(ctx context.Context, requestID, alumniID uuid.UUID) (*models.PaymentDetails, error)
	ListSent(ctx context.Context, alumniID uuid.UUID) ([]models.PaymentRequest, error)
	ListReceived(ctx context.Context, studentID uuid.UUID) ([]models.PaymentRequest, error)
	DashboardStats(ctx context.Context, alumniID uuid.UUID) (*models.DashboardStats, error)
}

// paymentServiceImpl implements PaymentService
type paymentServiceImpl struct {
	store         repositories.Store
	notifications NotificationService
	clock         Clock
	logger        zerolog.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(store repositories.Store, notifications NotificationService, clock Clock, logger zerolog.Logger) PaymentService {
	return &paymentServiceImpl{
		store:         store,
		notifications: notifications,
		clock:         clock,
		logger:        logger,
	}
}

func strPtr(s string) *string { return &s }

func relatedTo(req *models.PaymentRequest) (*uuid.UUID, *string) {
	id := req.ID
	return &id, strPtr(models.RelatedPaymentRequest)
}

// stateError reports an operation that needs the request in the expected status
func stateError(req *models.PaymentRequest, expected models.PaymentStatus) error {
	metrics.TransitionConflicts.WithLabelValues(paymentWorkflow).Inc()
	if expected == models.PaymentPending {
		return apperrors.NewInvalidStateError("Payment request already %s", req.Status)
	}
	return apperrors.NewInvalidStateError("Payment request is not %s. Current status: %s", expected, req.Status)
}

// transition applies a guarded status change. A lost race is reported against the status that won.
func (s *paymentServiceImpl) transition(ctx context.Context, tx repositories.Store, id uuid.UUID, t models.PaymentTransition) (*models.PaymentRequest, error) {
	if !t.From.CanTransitionTo(t.To) {
		return nil, apperrors.NewInvalidStateError("Payment request cannot move from %s to %s", t.From, t.To)
	}
	updated, err := tx.Payments().Transition(ctx, id, t)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransitionConflict) {
			current, getErr := tx.Payments().GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, stateError(current, t.From)
		}
		return nil, err
	}
	metrics.Transitions.WithLabelValues(paymentWorkflow, string(t.To)).Inc()
	return updated, nil
}

// CreateRequest records an alumni pledge and notifies the student
func (s *paymentServiceImpl) CreateRequest(ctx context.Context, alumniID, studentID uuid.UUID, amount float64, message string) (*models.PaymentRequest, error) {
	if !helpers.IsPositiveAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	var req *models.PaymentRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := tx.Principals().GetAlumni(ctx, alumniID); err != nil {
			return err
		}
		if _, err := tx.Principals().GetStudent(ctx, studentID); err != nil {
			if errors.Is(err, apperrors.ErrPrincipalNotFound) {
				return apperrors.ErrRecipientNotFound
			}
			return err
		}

		message = strings.TrimSpace(message)
		if message == "" {
			message = "Payment request of " + helpers.FormatAmount(amount)
		}

		now := s.clock.Now()
		req = &models.PaymentRequest{
			ID:          uuid.New(),
			SenderID:    alumniID,
			RecipientID: studentID,
			Amount:      amount,
			Message:     message,
			Status:      models.PaymentPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Payments().Create(ctx, req); err != nil {
			return err
		}

		relatedID, relatedKind := relatedTo(req)
		_, err := s.notifications.Notify(ctx, tx, NotificationDraft{
			Recipient:   models.PartyOf(studentID, models.KindStudent),
			Sender:      models.PartyOf(alumniID, models.KindAlumni),
			Type:        models.NotificationPaymentRequest,
			Title:       "New Payment Request",
			Message:     "An alumni has requested to support you with " + helpers.FormatAmount(amount),
			RelatedID:   relatedID,
			RelatedKind: relatedKind,
			ActionURL:   strPtr(StudentNotificationsURL),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues(paymentWorkflow, string(models.PaymentPending)).Inc()
	s.logger.Info().
		Str("requestId", req.ID.String()).
		Str("alumniId", alumniID.String()).
		Str("studentId", studentID.String()).
		Float64("amount", amount).
		Msg("Payment request created")
	return req, nil
}

// loadForRecipient fetches a request addressed to the student
func (s *paymentServiceImpl) loadForRecipient(ctx context.Context, tx repositories.Store, requestID, studentID uuid.UUID) (*models.PaymentRequest, error) {
	req, err := tx.Payments().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequirePaymentRecipient(req, studentID); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve accepts the pledge, stores the first UPI id the student supplies, and
// tells the alumni where to pay.
func (s *paymentServiceImpl) Approve(ctx context.Context, requestID, studentID uuid.UUID, upiID string) (*models.PaymentRequest, error) {
	upiID = strings.TrimSpace(upiID)

	var approved *models.PaymentRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		req, err := s.loadForRecipient(ctx, tx, requestID, studentID)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(models.PaymentApproved) {
			return stateError(req, models.PaymentPending)
		}
		if upiID == "" {
			return apperrors.ErrMissingUPIID
		}

		now := s.clock.Now()
		approved, err = s.transition(ctx, tx, requestID, models.PaymentTransition{
			From: models.PaymentPending,
			To:   models.PaymentApproved,
			At:   now,
		})
		if err != nil {
			return err
		}

		stored, err := tx.Principals().SetUPIIDIfEmpty(ctx, studentID, upiID, now)
		if err != nil {
			return err
		}
		if stored {
			s.logger.Info().Str("studentId", studentID.String()).Msg("UPI ID saved on first approval")
		}

		relatedID, relatedKind := relatedTo(req)
		_, err = s.notifications.Notify(ctx, tx, NotificationDraft{
			Recipient: models.PartyOf(req.SenderID, models.KindAlumni),
			Sender:    models.PartyOf(studentID, models.KindStudent),
			Type:      models.NotificationPaymentApproved,
			Title:     "Payment Request Approved",
			Message: fmt.Sprintf("Your payment request of %s has been approved. Pay to UPI ID: %s",
				helpers.FormatAmount(req.Amount), upiID),
			RelatedID:   relatedID,
			RelatedKind: relatedKind,
			ActionURL:   strPtr(AlumniNotificationsURL),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("requestId", requestID.String()).Msg("Payment request approved")
	return approved, nil
}

// Reject declines the pledge. The alumni is notified with the optional reason.
func (s *paymentServiceImpl) Reject(ctx context.Context, requestID, studentID uuid.UUID, reason string) (*models.PaymentRequest, error) {
	reason = strings.TrimSpace(reason)

	var rejected *models.PaymentRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		req, err := s.loadForRecipient(ctx, tx, requestID, studentID)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(models.PaymentRejected) {
			return stateError(req, models.PaymentPending)
		}

		rejected, err = s.transition(ctx, tx, requestID, models.PaymentTransition{
			From: models.PaymentPending,
			To:   models.PaymentRejected,
			At:   s.clock.Now(),
		})
		if err != nil {
			return err
		}

		text := "Your payment request was rejected."
		if reason != "" {
			text += " Reason: " + reason
		}
		relatedID, relatedKind := relatedTo(req)
		_, err = s.notifications.Notify(ctx, tx, NotificationDraft{
			Recipient:   models.PartyOf(req.SenderID, models.KindAlumni),
			Sender:      models.PartyOf(studentID, models.KindStudent),
			Type:        models.NotificationPaymentRequest,
			Title:       "Payment Request Rejected",
			Message:     text,
			RelatedID:   relatedID,
			RelatedKind: relatedKind,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("requestId", requestID.String()).Msg("Payment request rejected")
	return rejected, nil
}

// isReplay reports whether a completion retry names the transaction already recorded
func isReplay(req *models.PaymentRequest, transactionID string) bool {
	return req.Status == models.PaymentCompleted &&
		req.TransactionID != nil &&
		transactionID != "" &&
		*req.TransactionID == transactionID
}

// Complete records the out-of-band transfer. The status write, the financial need
// decrement and the student notification commit together.
func (s *paymentServiceImpl) Complete(ctx context.Context, requestID, alumniID uuid.UUID, transactionID string) (*models.PaymentRequest, error) {
	transactionID = strings.TrimSpace(transactionID)

	var (
		completed *models.PaymentRequest
		replayed  bool
		newNeed   *float64
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		req, err := tx.Payments().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := auth.RequirePaymentSender(req, alumniID); err != nil {
			return err
		}
		if isReplay(req, transactionID) {
			completed, replayed = req, true
			return nil
		}
		if !req.Status.CanTransitionTo(models.PaymentCompleted) {
			return stateError(req, models.PaymentApproved)
		}
		if transactionID == "" {
			return apperrors.ErrMissingTransactionID
		}

		now := s.clock.Now()
		completed, err = s.transition(ctx, tx, requestID, models.PaymentTransition{
			From:          models.PaymentApproved,
			To:            models.PaymentCompleted,
			At:            now,
			TransactionID: &transactionID,
		})
		if err != nil {
			return err
		}

		newNeed, err = tx.Principals().DecrementFinancialNeed(ctx, req.RecipientID, req.Amount, now)
		if err != nil {
			return err
		}

		relatedID, relatedKind := relatedTo(req)
		_, err = s.notifications.Notify(ctx, tx, NotificationDraft{
			Recipient: models.PartyOf(req.RecipientID, models.KindStudent),
			Sender:    models.PartyOf(alumniID, models.KindAlumni),
			Type:      models.NotificationPaymentCompleted,
			Title:     "Payment Completed",
			Message: fmt.Sprintf("An alumni has completed payment of %s. Transaction ID: %s",
				helpers.FormatAmount(req.Amount), transactionID),
			RelatedID:   relatedID,
			RelatedKind: relatedKind,
			ActionURL:   strPtr(StudentNotificationsURL),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		s.logger.Info().Str("requestId", requestID.String()).Msg("Payment completion replayed")
		return completed, nil
	}

	event := s.logger.Info().
		Str("requestId", requestID.String()).
		Str("transactionId", transactionID)
	if newNeed != nil {
		event = event.Float64("financialNeed", *newNeed)
	}
	event.Msg("Payment completed")
	return completed, nil
}

// GetDetailsForAlumni exposes the student's UPI id to the alumni of an approved request
func (s *paymentServiceImpl) GetDetailsForAlumni(ctx context.Context, requestID, alumniID uuid.UUID) (*models.PaymentDetails, error) {
	req, err := s.store.Payments().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequirePaymentSender(req, alumniID); err != nil {
		return nil, err
	}
	if req.Status != models.PaymentApproved {
		return nil, stateError(req, models.PaymentApproved)
	}

	student, err := s.store.Principals().GetStudent(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPrincipalNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, err
	}
	if student.UPIID == nil || *student.UPIID == "" {
		return nil, apperrors.ErrUPIIDNotOnFile
	}

	return &models.PaymentDetails{
		UPIID:         *student.UPIID,
		Amount:        req.Amount,
		RecipientName: student.DisplayName,
	}, nil
}

// ListSent returns the alumni's requests, newest first
func (s *paymentServiceImpl) ListSent(ctx context.Context, alumniID uuid.UUID) ([]models.PaymentRequest, error) {
	return s.store.Payments().ListBySender(ctx, alumniID)
}

// ListReceived returns the student's requests, newest first
func (s *paymentServiceImpl) ListReceived(ctx context.Context, studentID uuid.UUID) ([]models.PaymentRequest, error) {
	return s.store.Payments().ListByRecipient(ctx, studentID)
}

// DashboardStats computes the three alumni counters
func (s *paymentServiceImpl) DashboardStats(ctx context.Context, alumniID uuid.UUID) (*models.DashboardStats, error) {
	payments := s.store.Payments()

	scholarships, err := payments.CountBySender(ctx, alumniID, models.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	pending, err := payments.CountBySender(ctx, alumniID, models.PaymentPending)
	if err != nil {
		return nil, err
	}
	mentored, err := payments.CountDistinctRecipients(ctx, alumniID, models.PaymentCompleted)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		Scholarships:    scholarships,
		PendingRequests: pending,
		Mentored:        mentored,
	}, nil
}
