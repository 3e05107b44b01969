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
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

var studentColumns = []string{
	"id", "username", "email", "profile_picture", "current_degree", "branch",
	"upi_id", "financial_need", "financial_need_baseline", "created_at", "updated_at",
}

var alumniColumns = []string{
	"id", "username", "email", "profile_picture", "company", "designation", "created_at", "updated_at",
}

// principalRepository handles student and alumni database operations
type principalRepository struct {
	db DBTX
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db DBTX) PrincipalRepository {
	return &principalRepository{db: db}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.DisplayName, &s.Email, &s.AvatarRef, &s.CurrentDegree, &s.Branch,
		&s.UPIID, &s.FinancialNeed, &s.FinancialNeedBaseline, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanAlumni(row pgx.Row) (*models.Alumni, error) {
	var a models.Alumni
	err := row.Scan(
		&a.ID, &a.DisplayName, &a.Email, &a.AvatarRef, &a.Company, &a.Designation, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetStudent retrieves a student by ID
func (r *principalRepository) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		logger.Error().Err(err).Str("studentId", id.String()).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return s, nil
}

// GetAlumni retrieves an alumni by ID
func (r *principalRepository) GetAlumni(ctx context.Context, id uuid.UUID) (*models.Alumni, error) {
	sql, args, err := psql.Select(alumniColumns...).From("alumni").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get alumni query: %w", err)
	}

	a, err := scanAlumni(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		logger.Error().Err(err).Str("alumniId", id.String()).Msg("Error scanning alumni row")
		return nil, fmt.Errorf("error retrieving alumni: %w", err)
	}
	return a, nil
}

// GetStudentsByIDs retrieves the students among ids, ordered by name
func (r *principalRepository) GetStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	sql, args, err := psql.Select(studentColumns...).From("students").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// GetAlumniByIDs retrieves the alumni among ids, ordered by name
func (r *principalRepository) GetAlumniByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Alumni, error) {
	if len(ids) == 0 {
		return []models.Alumni{}, nil
	}
	sql, args, err := psql.Select(alumniColumns...).From("alumni").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build alumni query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying alumni: %w", err)
	}
	defer rows.Close()

	alumni := []models.Alumni{}
	for rows.Next() {
		a, err := scanAlumni(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning alumni: %w", err)
		}
		alumni = append(alumni, *a)
	}
	return alumni, rows.Err()
}

// CreateStudent inserts a student profile
func (r *principalRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	sql, args, err := psql.Insert("students").Columns(studentColumns...).
		Values(s.ID, s.DisplayName, s.Email, s.AvatarRef, s.CurrentDegree, s.Branch,
			s.UPIID, s.FinancialNeed, s.FinancialNeedBaseline, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentId", s.ID.String()).Msg("Error creating student")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// CreateAlumni inserts an alumni profile
func (r *principalRepository) CreateAlumni(ctx context.Context, a *models.Alumni) error {
	sql, args, err := psql.Insert("alumni").Columns(alumniColumns...).
		Values(a.ID, a.DisplayName, a.Email, a.AvatarRef, a.Company, a.Designation, a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create alumni query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("alumniId", a.ID.String()).Msg("Error creating alumni")
		return fmt.Errorf("error creating alumni: %w", err)
	}
	return nil
}

// CountPrincipals counts students and alumni together
func (r *principalRepository) CountPrincipals(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT (SELECT COUNT(*) FROM students) + (SELECT COUNT(*) FROM alumni)`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting principals: %w", err)
	}
	return count, nil
}

// SetUPIIDIfEmpty stores the UPI id of a student that has none yet
func (r *principalRepository) SetUPIIDIfEmpty(ctx context.Context, studentID uuid.UUID, upiID string, at time.Time) (bool, error) {
	query := `
		UPDATE students SET upi_id = $2, updated_at = $3
		WHERE id = $1 AND (upi_id IS NULL OR upi_id = '')
	`
	tag, err := r.db.Exec(ctx, query, studentID, upiID, at)
	if err != nil {
		logger.Error().Err(err).Str("studentId", studentID.String()).Msg("Error storing UPI ID")
		return false, fmt.Errorf("error storing UPI ID: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DecrementFinancialNeed lowers a positive financial need, floored at zero
func (r *principalRepository) DecrementFinancialNeed(ctx context.Context, studentID uuid.UUID, amount float64, at time.Time) (*float64, error) {
	query := `
		UPDATE students SET financial_need = GREATEST(0, financial_need - $2), updated_at = $3
		WHERE id = $1 AND financial_need IS NOT NULL AND financial_need <> 0
		RETURNING financial_need
	`
	var need float64
	err := r.db.QueryRow(ctx, query, studentID, amount, at).Scan(&need)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Str("studentId", studentID.String()).Msg("Error decrementing financial need")
		return nil, fmt.Errorf("error decrementing financial need: %w", err)
	}
	return &need, nil
}

// ListStudentsWithBaseline returns students with a declared need baseline
func (r *principalRepository) ListStudentsWithBaseline(ctx context.Context) ([]models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).From("students").
		Where(squirrel.NotEq{"financial_need_baseline": nil}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// SetFinancialNeed overwrites the stored need of a student
func (r *principalRepository) SetFinancialNeed(ctx context.Context, studentID uuid.UUID, need float64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET financial_need = $2, updated_at = $3 WHERE id = $1`, studentID, need, at)
	if err != nil {
		return fmt.Errorf("error setting financial need: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPrincipalNotFound
	}
	return nil
}
