package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

var paymentColumns = []string{
	"id", "sender_id", "recipient_id", "amount", "message", "status",
	"transaction_id", "approved_at", "completed_at", "created_at", "updated_at",
}

type paymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepository{db: db}
}

func scanPayment(row pgx.Row, extra ...any) (*models.PaymentRequest, error) {
	var p models.PaymentRequest
	dest := []any{
		&p.ID, &p.SenderID, &p.RecipientID, &p.Amount, &p.Message, &p.Status,
		&p.TransactionID, &p.ApprovedAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}

// Create inserts a payment request
func (r *paymentRepository) Create(ctx context.Context, req *models.PaymentRequest) error {
	sql, args, err := psql.Insert("payment_requests").Columns(paymentColumns...).
		Values(req.ID, req.SenderID, req.RecipientID, req.Amount, req.Message, req.Status,
			req.TransactionID, req.ApprovedAt, req.CompletedAt, req.CreatedAt, req.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create payment request query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("requestId", req.ID.String()).Msg("Error creating payment request")
		return fmt.Errorf("error creating payment request: %w", err)
	}
	return nil
}

// GetByID retrieves a payment request by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRequest, error) {
	sql, args, err := psql.Select(paymentColumns...).From("payment_requests").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get payment request query: %w", err)
	}

	p, err := scanPayment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentRequestNotFound
		}
		return nil, fmt.Errorf("error retrieving payment request: %w", err)
	}
	return p, nil
}

// Transition is a conditional status write. The timestamps that belong to the
// target status are set in the same statement.
func (r *paymentRepository) Transition(ctx context.Context, id uuid.UUID, t models.PaymentTransition) (*models.PaymentRequest, error) {
	qb := psql.Update("payment_requests").
		Set("status", t.To).
		Set("updated_at", t.At).
		Where(squirrel.Eq{"id": id, "status": t.From})

	switch t.To {
	case models.PaymentApproved:
		qb = qb.Set("approved_at", t.At)
	case models.PaymentCompleted:
		qb = qb.Set("completed_at", t.At).Set("transaction_id", t.TransactionID)
	}

	sql, args, err := qb.Suffix("RETURNING " + joinColumns(paymentColumns)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment transition query: %w", err)
	}

	p, err := scanPayment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTransitionConflict
		}
		logger.Error().Err(err).
			Str("requestId", id.String()).
			Str("from", string(t.From)).
			Str("to", string(t.To)).
			Msg("Error applying payment transition")
		return nil, fmt.Errorf("error applying payment transition: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) listWithCounterpart(ctx context.Context, joinTable, joinOn string, kind models.PrincipalKind, where squirrel.Eq) ([]models.PaymentRequest, error) {
	cols := append(prefixed("p", paymentColumns), "u.id", "u.username", "u.profile_picture")
	sql, args, err := psql.Select(cols...).
		From("payment_requests p").
		Join(fmt.Sprintf("%s u ON u.id = p.%s", joinTable, joinOn)).
		Where(where).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying payment requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PaymentRequest{}
	for rows.Next() {
		ref := models.PrincipalRef{Kind: kind}
		p, err := scanPayment(rows, &ref.ID, &ref.DisplayName, &ref.AvatarRef)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment request: %w", err)
		}
		if kind == models.KindAlumni {
			p.Sender = &ref
		} else {
			p.Recipient = &ref
		}
		requests = append(requests, *p)
	}
	return requests, rows.Err()
}

// ListBySender returns an alumni's requests with the student reference, newest first
func (r *paymentRepository) ListBySender(ctx context.Context, alumniID uuid.UUID) ([]models.PaymentRequest, error) {
	return r.listWithCounterpart(ctx, "students", "recipient_id", models.KindStudent, squirrel.Eq{"p.sender_id": alumniID})
}

// ListByRecipient returns a student's requests with the alumni reference, newest first
func (r *paymentRepository) ListByRecipient(ctx context.Context, studentID uuid.UUID) ([]models.PaymentRequest, error) {
	return r.listWithCounterpart(ctx, "alumni", "sender_id", models.KindAlumni, squirrel.Eq{"p.recipient_id": studentID})
}

// CountBySender counts an alumni's requests in a status
func (r *paymentRepository) CountBySender(ctx context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error) {
	sql, args, err := psql.Select("COUNT(*)").From("payment_requests").
		Where(squirrel.Eq{"sender_id": alumniID, "status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting payment requests: %w", err)
	}
	return count, nil
}

// CountDistinctRecipients counts the students an alumni has requests in a status for
func (r *paymentRepository) CountDistinctRecipients(ctx context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error) {
	sql, args, err := psql.Select("COUNT(DISTINCT recipient_id)").From("payment_requests").
		Where(squirrel.Eq{"sender_id": alumniID, "status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build distinct count query: %w", err)
	}
	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting recipients: %w", err)
	}
	return count, nil
}

// SumCompletedByRecipient totals completed amounts per student
func (r *paymentRepository) SumCompletedByRecipient(ctx context.Context) (map[uuid.UUID]float64, error) {
	sql, args, err := psql.Select("recipient_id", "SUM(amount)").From("payment_requests").
		Where(squirrel.Eq{"status": models.PaymentCompleted}).
		GroupBy("recipient_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completed sum query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error summing completed payments: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]float64)
	for rows.Next() {
		var id uuid.UUID
		var total float64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("error scanning completed sum: %w", err)
		}
		totals[id] = total
	}
	return totals, rows.Err()
}
