package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/helpers"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) error {
	return r.s.view(func(st *state) error {
		st.notifications[n.ID] = *n
		st.track(n.ID)
		return nil
	})
}

func (r *notificationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	var out *models.Notification
	err := r.s.view(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return apperrors.ErrNotificationNotFound
		}
		out = &n
		return nil
	})
	return out, err
}

func (r *notificationRepo) List(_ context.Context, recipientID uuid.UUID, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	var (
		page  []models.Notification
		total int64
	)
	err := r.s.view(func(st *state) error {
		var all []models.Notification
		for _, n := range st.notifications {
			if n.Recipient.ID == recipientID && (!filter.UnreadOnly || !n.IsRead) {
				all = append(all, n)
			}
		}
		newestFirst(st, all, func(n models.Notification) uuid.UUID { return n.ID },
			func(a, b models.Notification) int { return a.CreatedAt.Compare(b.CreatedAt) })

		total = int64(len(all))
		start, end := 0, len(all)
		if filter.Limit > 0 {
			start, end = helpers.CalculateSliceIndices(filter.Offset, filter.Limit, len(all))
		}
		page = append([]models.Notification{}, all[start:end]...)
		return nil
	})
	return page, total, err
}

func (r *notificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		for _, item := range st.notifications {
			if item.Recipient.ID == recipientID && !item.IsRead {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *notificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	return r.s.view(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return apperrors.ErrNotificationNotFound
		}
		n.IsRead = true
		st.notifications[id] = n
		return nil
	})
}

func (r *notificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.s.view(func(st *state) error {
		for id, n := range st.notifications {
			if n.Recipient.ID == recipientID && !n.IsRead {
				n.IsRead = true
				st.notifications[id] = n
				count++
			}
		}
		return nil
	})
	return count, err
}
