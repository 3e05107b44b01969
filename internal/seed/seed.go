package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/scholarlink/internal/app/models"
	appRepos "github.com/yigit/scholarlink/internal/app/repositories"
)

// Fixed ids so demo tokens stay valid across restarts
var (
	DemoStudentID = uuid.MustParse("5b1f2c3e-0000-4000-8000-000000000001")
	DemoAlumniID  = uuid.MustParse("5b1f2c3e-0000-4000-8000-000000000002")
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// CreateDefaultData creates demo students and alumni when the directory is
// empty. It only runs in development mode.
func CreateDefaultData(ctx context.Context, store appRepos.Store, lgr zerolog.Logger) error {
	count, err := store.Principals().CountPrincipals(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		lgr.Debug().Int64("principals", count).Msg("Principal directory already populated, skipping seed")
		return nil
	}

	lgr.Info().Msg("Creating default data (students/alumni)...")
	now := time.Now().UTC()

	students := []*appModels.Student{
		{
			ID:                    DemoStudentID,
			DisplayName:           "asha",
			Email:                 "asha@students.example.edu",
			CurrentDegree:         strPtr("B.Tech"),
			Branch:                strPtr("Computer Science"),
			FinancialNeed:         floatPtr(50000),
			FinancialNeedBaseline: floatPtr(50000),
		},
		{
			ID:                    uuid.New(),
			DisplayName:           "kiran",
			Email:                 "kiran@students.example.edu",
			CurrentDegree:         strPtr("M.Sc"),
			Branch:                strPtr("Physics"),
			FinancialNeed:         floatPtr(20000),
			FinancialNeedBaseline: floatPtr(20000),
		},
	}
	alumni := []*appModels.Alumni{
		{
			ID:          DemoAlumniID,
			DisplayName: "ravi",
			Email:       "ravi@alumni.example.com",
			Company:     strPtr("Acme Corp"),
			Designation: strPtr("Engineering Manager"),
		},
	}

	// Keep going on partial failure and report everything at the end
	var finalErr error
	return store.WithinTx(ctx, func(ctx context.Context, tx appRepos.Store) error {
		for _, s := range students {
			s.CreatedAt, s.UpdatedAt = now, now
			if err := tx.Principals().CreateStudent(ctx, s); err != nil {
				lgr.Error().Err(err).Str("email", s.Email).Msg("Error creating demo student")
				finalErr = errors.Join(finalErr, err)
			}
		}
		for _, a := range alumni {
			a.CreatedAt, a.UpdatedAt = now, now
			if err := tx.Principals().CreateAlumni(ctx, a); err != nil {
				lgr.Error().Err(err).Str("email", a.Email).Msg("Error creating demo alumni")
				finalErr = errors.Join(finalErr, err)
			}
		}
		if finalErr == nil {
			lgr.Info().Int("students", len(students)).Int("alumni", len(alumni)).Msg("Default data created")
		}
		return finalErr
	})
}
