package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

type connectionRepo struct{ s *Store }

func samePair(c models.ConnectionRequest, a, b uuid.UUID) bool {
	return (c.Sender.ID == a && c.Receiver.ID == b) || (c.Sender.ID == b && c.Receiver.ID == a)
}

func byCreatedAt(a, b models.ConnectionRequest) int { return a.CreatedAt.Compare(b.CreatedAt) }

func connectionID(c models.ConnectionRequest) uuid.UUID { return c.ID }

func (r *connectionRepo) Create(_ context.Context, req *models.ConnectionRequest) error {
	return r.s.view(func(st *state) error {
		for _, c := range st.connections {
			if c.Status.Active() && samePair(c, req.Sender.ID, req.Receiver.ID) {
				return apperrors.ErrActivePairExists
			}
		}
		st.connections[req.ID] = *req
		st.track(req.ID)
		return nil
	})
}

func (r *connectionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ConnectionRequest, error) {
	var out *models.ConnectionRequest
	err := r.s.view(func(st *state) error {
		c, ok := st.connections[id]
		if !ok {
			return apperrors.ErrConnectionNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *connectionRepo) FindLatestBetween(_ context.Context, a, b uuid.UUID) (*models.ConnectionRequest, error) {
	var out *models.ConnectionRequest
	err := r.s.view(func(st *state) error {
		var pair []models.ConnectionRequest
		for _, c := range st.connections {
			if samePair(c, a, b) {
				pair = append(pair, c)
			}
		}
		if len(pair) == 0 {
			return nil
		}
		newestFirst(st, pair, connectionID, byCreatedAt)
		out = &pair[0]
		return nil
	})
	return out, err
}

func (r *connectionRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.ConnectionStatus, at time.Time) (*models.ConnectionRequest, error) {
	var out *models.ConnectionRequest
	err := r.s.view(func(st *state) error {
		c, ok := st.connections[id]
		if !ok || c.Status != from {
			return apperrors.ErrTransitionConflict
		}
		c.Status = to
		c.UpdatedAt = at
		st.connections[id] = c
		out = &c
		return nil
	})
	return out, err
}

func (r *connectionRepo) filter(keep func(models.ConnectionRequest) bool, cmp func(a, b models.ConnectionRequest) int) ([]models.ConnectionRequest, error) {
	out := []models.ConnectionRequest{}
	err := r.s.view(func(st *state) error {
		for _, c := range st.connections {
			if keep(c) {
				out = append(out, c)
			}
		}
		newestFirst(st, out, connectionID, cmp)
		return nil
	})
	return out, err
}

func (r *connectionRepo) ListReceived(_ context.Context, receiverID uuid.UUID, status models.ConnectionStatus) ([]models.ConnectionRequest, error) {
	return r.filter(func(c models.ConnectionRequest) bool {
		return c.Receiver.ID == receiverID && c.Status == status
	}, byCreatedAt)
}

func (r *connectionRepo) ListSent(_ context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error) {
	return r.filter(func(c models.ConnectionRequest) bool {
		return c.Sender.ID == senderID
	}, byCreatedAt)
}

func (r *connectionRepo) ListAccepted(_ context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error) {
	return r.filter(func(c models.ConnectionRequest) bool {
		return c.Status == models.ConnectionAccepted && (c.Sender.ID == userID || c.Receiver.ID == userID)
	}, func(a, b models.ConnectionRequest) int { return a.UpdatedAt.Compare(b.UpdatedAt) })
}
