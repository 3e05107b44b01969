package memory

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

type principalRepo struct{ s *Store }

func (r *principalRepo) GetStudent(_ context.Context, id uuid.UUID) (*models.Student, error) {
	var out *models.Student
	err := r.s.view(func(st *state) error {
		s, ok := st.students[id]
		if !ok {
			return apperrors.ErrPrincipalNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *principalRepo) GetAlumni(_ context.Context, id uuid.UUID) (*models.Alumni, error) {
	var out *models.Alumni
	err := r.s.view(func(st *state) error {
		a, ok := st.alumni[id]
		if !ok {
			return apperrors.ErrPrincipalNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *principalRepo) GetStudentsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Student, error) {
	out := []models.Student{}
	err := r.s.view(func(st *state) error {
		seen := map[uuid.UUID]bool{}
		for _, id := range ids {
			if s, ok := st.students[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, s)
			}
		}
		return nil
	})
	sortByName(out, func(s models.Student) string { return s.DisplayName })
	return out, err
}

func (r *principalRepo) GetAlumniByIDs(_ context.Context, ids []uuid.UUID) ([]models.Alumni, error) {
	out := []models.Alumni{}
	err := r.s.view(func(st *state) error {
		seen := map[uuid.UUID]bool{}
		for _, id := range ids {
			if a, ok := st.alumni[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, a)
			}
		}
		return nil
	})
	sortByName(out, func(a models.Alumni) string { return a.DisplayName })
	return out, err
}

func (r *principalRepo) CreateStudent(_ context.Context, s *models.Student) error {
	return r.s.view(func(st *state) error {
		if _, exists := st.students[s.ID]; exists {
			return apperrors.NewDuplicateStateError("student already exists")
		}
		st.students[s.ID] = *s
		st.track(s.ID)
		return nil
	})
}

func (r *principalRepo) CreateAlumni(_ context.Context, a *models.Alumni) error {
	return r.s.view(func(st *state) error {
		if _, exists := st.alumni[a.ID]; exists {
			return apperrors.NewDuplicateStateError("alumni already exists")
		}
		st.alumni[a.ID] = *a
		st.track(a.ID)
		return nil
	})
}

func (r *principalRepo) CountPrincipals(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		n = int64(len(st.students) + len(st.alumni))
		return nil
	})
	return n, err
}

func (r *principalRepo) SetUPIIDIfEmpty(_ context.Context, studentID uuid.UUID, upiID string, at time.Time) (bool, error) {
	var wrote bool
	err := r.s.view(func(st *state) error {
		s, ok := st.students[studentID]
		if !ok || (s.UPIID != nil && *s.UPIID != "") {
			return nil
		}
		v := upiID
		s.UPIID = &v
		s.UpdatedAt = at
		st.students[studentID] = s
		wrote = true
		return nil
	})
	return wrote, err
}

func (r *principalRepo) DecrementFinancialNeed(_ context.Context, studentID uuid.UUID, amount float64, at time.Time) (*float64, error) {
	var out *float64
	err := r.s.view(func(st *state) error {
		s, ok := st.students[studentID]
		if !ok || s.FinancialNeed == nil || *s.FinancialNeed == 0 {
			return nil
		}
		need := math.Max(0, *s.FinancialNeed-amount)
		s.FinancialNeed = &need
		s.UpdatedAt = at
		st.students[studentID] = s
		result := need
		out = &result
		return nil
	})
	return out, err
}

func (r *principalRepo) ListStudentsWithBaseline(_ context.Context) ([]models.Student, error) {
	out := []models.Student{}
	err := r.s.view(func(st *state) error {
		for _, s := range st.students {
			if s.FinancialNeedBaseline != nil {
				out = append(out, s)
			}
		}
		oldestFirst(st, out, func(s models.Student) uuid.UUID { return s.ID },
			func(a, b models.Student) int { return a.CreatedAt.Compare(b.CreatedAt) })
		return nil
	})
	return out, err
}

func (r *principalRepo) SetFinancialNeed(_ context.Context, studentID uuid.UUID, need float64, at time.Time) error {
	return r.s.view(func(st *state) error {
		s, ok := st.students[studentID]
		if !ok {
			return apperrors.ErrPrincipalNotFound
		}
		v := need
		s.FinancialNeed = &v
		s.UpdatedAt = at
		st.students[studentID] = s
		return nil
	})
}
