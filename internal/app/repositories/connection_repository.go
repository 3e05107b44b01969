package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/dberrors"
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

// ActiveConnectionPairConstraint is the partial unique index on pending and accepted pairs
const ActiveConnectionPairConstraint = "uq_connection_active_pair"

var connectionColumns = []string{
	"id", "sender_id", "sender_kind", "sender_name", "sender_avatar",
	"receiver_id", "receiver_kind", "receiver_name", "receiver_avatar",
	"status", "message", "created_at", "updated_at",
}

type connectionRepository struct {
	db DBTX
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db DBTX) ConnectionRepository {
	return &connectionRepository{db: db}
}

func scanConnection(row pgx.Row) (*models.ConnectionRequest, error) {
	var c models.ConnectionRequest
	err := row.Scan(
		&c.ID, &c.Sender.ID, &c.Sender.Kind, &c.Sender.DisplayName, &c.Sender.AvatarRef,
		&c.Receiver.ID, &c.Receiver.Kind, &c.Receiver.DisplayName, &c.Receiver.AvatarRef,
		&c.Status, &c.Message, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepository) list(ctx context.Context, qb squirrel.SelectBuilder) ([]models.ConnectionRequest, error) {
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying connection requests: %w", err)
	}
	defer rows.Close()

	requests := []models.ConnectionRequest{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning connection request: %w", err)
		}
		requests = append(requests, *c)
	}
	return requests, rows.Err()
}

// Create inserts a connection request; the pair columns are derived from the parties
func (r *connectionRepository) Create(ctx context.Context, req *models.ConnectionRequest) error {
	low, high := models.CanonicalPair(req.Sender.ID, req.Receiver.ID)
	sql, args, err := psql.Insert("connection_requests").
		Columns(append(connectionColumns, "pair_low", "pair_high")...).
		Values(
			req.ID, req.Sender.ID, req.Sender.Kind, req.Sender.DisplayName, req.Sender.AvatarRef,
			req.Receiver.ID, req.Receiver.Kind, req.Receiver.DisplayName, req.Receiver.AvatarRef,
			req.Status, req.Message, req.CreatedAt, req.UpdatedAt, low, high,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create connection query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, ActiveConnectionPairConstraint) {
			logger.Warn().
				Str("senderId", req.Sender.ID.String()).
				Str("receiverId", req.Receiver.ID.String()).
				Msg("Concurrent connection request rejected by pair constraint")
			return apperrors.ErrActivePairExists
		}
		logger.Error().Err(err).Str("requestId", req.ID.String()).Msg("Error creating connection request")
		return fmt.Errorf("error creating connection request: %w", err)
	}
	return nil
}

// GetByID retrieves a connection request by ID
func (r *connectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ConnectionRequest, error) {
	sql, args, err := psql.Select(connectionColumns...).From("connection_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get connection query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error retrieving connection request: %w", err)
	}
	return c, nil
}

// FindLatestBetween returns the newest request of the pair regardless of direction
func (r *connectionRepository) FindLatestBetween(ctx context.Context, a, b uuid.UUID) (*models.ConnectionRequest, error) {
	low, high := models.CanonicalPair(a, b)
	sql, args, err := psql.Select(connectionColumns...).From("connection_requests").
		Where(squirrel.Eq{"pair_low": low, "pair_high": high}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pair lookup query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up connection pair: %w", err)
	}
	return c, nil
}

// UpdateStatus is a conditional write guarded by the expected current status
func (r *connectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ConnectionStatus, at time.Time) (*models.ConnectionRequest, error) {
	sql, args, err := psql.Update("connection_requests").
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + joinColumns(connectionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection status query: %w", err)
	}

	c, err := scanConnection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTransitionConflict
		}
		logger.Error().Err(err).Str("requestId", id.String()).Msg("Error updating connection status")
		return nil, fmt.Errorf("error updating connection status: %w", err)
	}
	return c, nil
}

// ListReceived returns requests addressed to receiverID with the given status, newest first
func (r *connectionRepository) ListReceived(ctx context.Context, receiverID uuid.UUID, status models.ConnectionStatus) ([]models.ConnectionRequest, error) {
	return r.list(ctx, psql.Select(connectionColumns...).From("connection_requests").
		Where(squirrel.Eq{"receiver_id": receiverID, "status": status}).
		OrderBy("created_at DESC"))
}

// ListSent returns every request sent by senderID, newest first
func (r *connectionRepository) ListSent(ctx context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error) {
	return r.list(ctx, psql.Select(connectionColumns...).From("connection_requests").
		Where(squirrel.Eq{"sender_id": senderID}).
		OrderBy("created_at DESC"))
}

// ListAccepted returns accepted requests where userID is either party
func (r *connectionRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error) {
	return r.list(ctx, psql.Select(connectionColumns...).From("connection_requests").
		Where(squirrel.Eq{"status": models.ConnectionAccepted}).
		Where(squirrel.Or{squirrel.Eq{"sender_id": userID}, squirrel.Eq{"receiver_id": userID}}).
		OrderBy("updated_at DESC"))
}
