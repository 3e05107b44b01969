package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/helpers"
)

// Services defined in this package:
// - ConnectionService: connection requests between students and alumni
// - MessageService: conversations and direct messages
// - PaymentService: the payment request workflow and its side effects
// - NotificationService: the notification center
// - ReconciliationService: financial need drift checks

// Clock supplies timestamps for created, updated, approved and completed times
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return helpers.UTCNow() }

// SystemClock is the wall clock in UTC
var SystemClock Clock = systemClock{}

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   uuid.UUID
	Kind models.PrincipalKind
}

// Options tune service behaviour
type Options struct {
	// RequireConnection makes getOrCreate and send demand an accepted connection
	RequireConnection bool
	Clock             Clock
}

// Services bundles every service built on one store
type Services struct {
	Connections    ConnectionService
	Messages       MessageService
	Payments       PaymentService
	Notifications  NotificationService
	Reconciliation ReconciliationService
}

// NewServices wires all services against the store
func NewServices(store repositories.Store, opts Options, logger zerolog.Logger) *Services {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	notifications := NewNotificationService(store, opts.Clock, logger.With().Str("service", "notification").Logger())
	return &Services{
		Connections:    NewConnectionService(store, opts.Clock, logger.With().Str("service", "connection").Logger()),
		Messages:       NewMessageService(store, opts, logger.With().Str("service", "message").Logger()),
		Payments:       NewPaymentService(store, notifications, opts.Clock, logger.With().Str("service", "payment").Logger()),
		Notifications:  notifications,
		Reconciliation: NewReconciliationService(store, opts.Clock, logger.With().Str("service", "reconciliation").Logger()),
	}
}

// resolvePrincipal is the single kind-dispatching identity lookup
func resolvePrincipal(ctx context.Context, principals repositories.PrincipalRepository, id uuid.UUID, kind models.PrincipalKind) (models.Principal, error) {
	switch kind {
	case models.KindStudent:
		s, err := principals.GetStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		return s, nil
	case models.KindAlumni:
		a, err := principals.GetAlumni(ctx, id)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, apperrors.ErrInvalidKind
	}
}

// resolveRef resolves a principal and returns its denormalised reference
func resolveRef(ctx context.Context, principals repositories.PrincipalRepository, id uuid.UUID, kind models.PrincipalKind) (models.PrincipalRef, error) {
	p, err := resolvePrincipal(ctx, principals, id, kind)
	if err != nil {
		return models.PrincipalRef{}, err
	}
	return p.Ref(), nil
}
