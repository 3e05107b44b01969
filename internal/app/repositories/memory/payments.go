package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, req *models.PaymentRequest) error {
	return r.s.view(func(st *state) error {
		if _, ok := st.alumni[req.SenderID]; !ok {
			return apperrors.ErrPrincipalNotFound
		}
		if _, ok := st.students[req.RecipientID]; !ok {
			return apperrors.ErrRecipientNotFound
		}
		stored := *req
		stored.Sender, stored.Recipient = nil, nil
		st.payments[req.ID] = stored
		st.track(req.ID)
		return nil
	})
}

func (r *paymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PaymentRequest, error) {
	var out *models.PaymentRequest
	err := r.s.view(func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return apperrors.ErrPaymentRequestNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *paymentRepo) Transition(_ context.Context, id uuid.UUID, t models.PaymentTransition) (*models.PaymentRequest, error) {
	var out *models.PaymentRequest
	err := r.s.view(func(st *state) error {
		p, ok := st.payments[id]
		if !ok || p.Status != t.From {
			return apperrors.ErrTransitionConflict
		}
		at := t.At
		p.Status = t.To
		p.UpdatedAt = at
		switch t.To {
		case models.PaymentApproved:
			p.ApprovedAt = &at
		case models.PaymentCompleted:
			p.CompletedAt = &at
			if t.TransactionID != nil {
				txn := *t.TransactionID
				p.TransactionID = &txn
			}
		}
		st.payments[id] = p
		out = &p
		return nil
	})
	return out, err
}

func (r *paymentRepo) list(keep func(models.PaymentRequest) bool, attach func(st *state, p *models.PaymentRequest)) ([]models.PaymentRequest, error) {
	out := []models.PaymentRequest{}
	err := r.s.view(func(st *state) error {
		for _, p := range st.payments {
			if keep(p) {
				attach(st, &p)
				out = append(out, p)
			}
		}
		newestFirst(st, out, func(p models.PaymentRequest) uuid.UUID { return p.ID },
			func(a, b models.PaymentRequest) int { return a.CreatedAt.Compare(b.CreatedAt) })
		return nil
	})
	return out, err
}

func (r *paymentRepo) ListBySender(_ context.Context, alumniID uuid.UUID) ([]models.PaymentRequest, error) {
	return r.list(
		func(p models.PaymentRequest) bool { return p.SenderID == alumniID },
		func(st *state, p *models.PaymentRequest) {
			if s, ok := st.students[p.RecipientID]; ok {
				ref := s.Ref()
				p.Recipient = &ref
			}
		},
	)
}

func (r *paymentRepo) ListByRecipient(_ context.Context, studentID uuid.UUID) ([]models.PaymentRequest, error) {
	return r.list(
		func(p models.PaymentRequest) bool { return p.RecipientID == studentID },
		func(st *state, p *models.PaymentRequest) {
			if a, ok := st.alumni[p.SenderID]; ok {
				ref := a.Ref()
				p.Sender = &ref
			}
		},
	)
}

func (r *paymentRepo) CountBySender(_ context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		for _, p := range st.payments {
			if p.SenderID == alumniID && p.Status == status {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *paymentRepo) CountDistinctRecipients(_ context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		seen := map[uuid.UUID]bool{}
		for _, p := range st.payments {
			if p.SenderID == alumniID && p.Status == status && !seen[p.RecipientID] {
				seen[p.RecipientID] = true
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *paymentRepo) SumCompletedByRecipient(_ context.Context) (map[uuid.UUID]float64, error) {
	totals := map[uuid.UUID]float64{}
	err := r.s.view(func(st *state) error {
		for _, p := range st.payments {
			if p.Status == models.PaymentCompleted {
				totals[p.RecipientID] += p.Amount
			}
		}
		return nil
	})
	return totals, err
}
