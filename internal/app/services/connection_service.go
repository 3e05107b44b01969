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
	"github.com/yigit/scholarlink/internal/pkg/metrics"
)

const connectionWorkflow = "connection"

// ConnectionService defines the interface for connection operations
type ConnectionService interface {
	SendRequest(ctx context.Context, sender Actor, receiverID uuid.UUID, receiverKind models.PrincipalKind, message string) (*models.ConnectionRequest, error)
	Accept(ctx context.Context, requestID, actorID uuid.UUID) (*models.ConnectionRequest, error)
	Reject(ctx context.Context, requestID, actorID uuid.UUID) (*models.ConnectionRequest, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error)
	ListConnections(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error)
	CheckStatus(ctx context.Context, userID, otherID uuid.UUID) (*models.ConnectionStatusView, error)
}

// connectionServiceImpl implements ConnectionService
type connectionServiceImpl struct {
	store  repositories.Store
	clock  Clock
	logger zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(store repositories.Store, clock Clock, logger zerolog.Logger) ConnectionService {
	return &connectionServiceImpl{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// activeConflict maps an existing active record of the pair to its failure
func activeConflict(existing *models.ConnectionRequest) error {
	if existing == nil {
		return nil
	}
	switch existing.Status {
	case models.ConnectionPending:
		return apperrors.ErrDuplicateRequest
	case models.ConnectionAccepted:
		return apperrors.ErrAlreadyConnected
	}
	return nil
}

// SendRequest creates a pending connection request from sender to receiver
func (s *connectionServiceImpl) SendRequest(
	ctx context.Context,
	sender Actor,
	receiverID uuid.UUID,
	receiverKind models.PrincipalKind,
	message string,
) (*models.ConnectionRequest, error) {
	if sender.ID == receiverID {
		return nil, apperrors.ErrSelfConnection
	}
	if !receiverKind.Valid() || !sender.Kind.Valid() {
		return nil, apperrors.ErrInvalidKind
	}

	connections := s.store.Connections()
	existing, err := connections.FindLatestBetween(ctx, sender.ID, receiverID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("senderId", sender.ID.String()).
			Str("receiverId", receiverID.String()).
			Msg("Failed to look up existing connection request")
		return nil, fmt.Errorf("error checking existing connection: %w", err)
	}
	if err := activeConflict(existing); err != nil {
		return nil, err
	}

	principals := s.store.Principals()
	senderRef, err := resolveRef(ctx, principals, sender.ID, sender.Kind)
	if err != nil {
		return nil, err
	}
	receiverRef, err := resolveRef(ctx, principals, receiverID, receiverKind)
	if err != nil {
		return nil, err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = models.DefaultConnectionMessage
	}

	now := s.clock.Now()
	req := &models.ConnectionRequest{
		ID:        uuid.New(),
		Sender:    senderRef,
		Receiver:  receiverRef,
		Status:    models.ConnectionPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := connections.Create(ctx, req); err != nil {
		if errors.Is(err, apperrors.ErrActivePairExists) {
			// Lost the race against a concurrent send; report what won.
			metrics.TransitionConflicts.WithLabelValues(connectionWorkflow).Inc()
			winner, lookupErr := connections.FindLatestBetween(ctx, sender.ID, receiverID)
			if lookupErr == nil {
				if conflict := activeConflict(winner); conflict != nil {
					return nil, conflict
				}
			}
			return nil, apperrors.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("error creating connection request: %w", err)
	}

	metrics.Transitions.WithLabelValues(connectionWorkflow, string(models.ConnectionPending)).Inc()
	s.logger.Info().
		Str("requestId", req.ID.String()).
		Str("senderId", sender.ID.String()).
		Str("receiverId", receiverID.String()).
		Msg("Connection request sent")
	return req, nil
}

// Accept moves a pending request to accepted
func (s *connectionServiceImpl) Accept(ctx context.Context, requestID, actorID uuid.UUID) (*models.ConnectionRequest, error) {
	return s.respond(ctx, requestID, actorID, models.ConnectionAccepted)
}

// Reject moves a pending request to rejected
func (s *connectionServiceImpl) Reject(ctx context.Context, requestID, actorID uuid.UUID) (*models.ConnectionRequest, error) {
	return s.respond(ctx, requestID, actorID, models.ConnectionRejected)
}

func (s *connectionServiceImpl) respond(ctx context.Context, requestID, actorID uuid.UUID, decision models.ConnectionStatus) (*models.ConnectionRequest, error) {
	connections := s.store.Connections()
	req, err := connections.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireConnectionReceiver(req, actorID); err != nil {
		return nil, err
	}
	if req.Status != models.ConnectionPending {
		metrics.TransitionConflicts.WithLabelValues(connectionWorkflow).Inc()
		return nil, apperrors.NewInvalidStateError("Connection request already %s", req.Status)
	}

	updated, err := connections.UpdateStatus(ctx, requestID, models.ConnectionPending, decision, s.clock.Now())
	if err != nil {
		if errors.Is(err, apperrors.ErrTransitionConflict) {
			metrics.TransitionConflicts.WithLabelValues(connectionWorkflow).Inc()
			if current, getErr := connections.GetByID(ctx, requestID); getErr == nil {
				return nil, apperrors.NewInvalidStateError("Connection request already %s", current.Status)
			}
		}
		return nil, err
	}

	metrics.Transitions.WithLabelValues(connectionWorkflow, string(decision)).Inc()
	s.logger.Info().
		Str("requestId", requestID.String()).
		Str("status", string(decision)).
		Msg("Connection request answered")
	return updated, nil
}

// ListPending returns pending requests addressed to the user
func (s *connectionServiceImpl) ListPending(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.store.Connections().ListReceived(ctx, userID, models.ConnectionPending)
}

// ListSent returns every request the user has sent
func (s *connectionServiceImpl) ListSent(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.store.Connections().ListSent(ctx, userID)
}

// ListConnections returns the user's accepted connections
func (s *connectionServiceImpl) ListConnections(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error) {
	return s.store.Connections().ListAccepted(ctx, userID)
}

// CheckStatus reports where the user stands with another user
func (s *connectionServiceImpl) CheckStatus(ctx context.Context, userID, otherID uuid.UUID) (*models.ConnectionStatusView, error) {
	latest, err := s.store.Connections().FindLatestBetween(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("error checking connection status: %w", err)
	}
	if latest == nil {
		return &models.ConnectionStatusView{Status: models.ConnectionStatusNone, CanConnect: true}, nil
	}
	return &models.ConnectionStatusView{
		Status:     string(latest.Status),
		CanConnect: latest.Status != models.ConnectionAccepted,
		IsPending:  latest.Status == models.ConnectionPending,
		IsSender:   latest.Sender.ID == userID,
	}, nil
}
