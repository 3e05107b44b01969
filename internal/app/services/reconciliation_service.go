package services

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/repositories"
)

// needTolerance absorbs float rounding when comparing balances
const needTolerance = 0.005

// ReconciliationService checks stored financial needs against completed payments
type ReconciliationService interface {
	// ReconcileFinancialNeed reports every student whose need differs from
	// max(0, baseline - completed total). With fix set the drifted needs are rewritten.
	ReconcileFinancialNeed(ctx context.Context, fix bool) (*dto.NeedReconciliationReport, error)
}

type reconciliationServiceImpl struct {
	store  repositories.Store
	clock  Clock
	logger zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(store repositories.Store, clock Clock, logger zerolog.Logger) ReconciliationService {
	return &reconciliationServiceImpl{store: store, clock: clock, logger: logger}
}

// expectedNeed derives the balance the ledger implies
func expectedNeed(baseline, completed float64) float64 {
	return math.Max(0, baseline-completed)
}

func drifted(recorded *float64, expected float64) bool {
	if recorded == nil {
		return true
	}
	return math.Abs(*recorded-expected) > needTolerance
}

func (s *reconciliationServiceImpl) ReconcileFinancialNeed(ctx context.Context, fix bool) (*dto.NeedReconciliationReport, error) {
	report := &dto.NeedReconciliationReport{Drifted: []models.NeedDrift{}, Fixed: fix}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		students, err := tx.Principals().ListStudentsWithBaseline(ctx)
		if err != nil {
			return err
		}
		totals, err := tx.Payments().SumCompletedByRecipient(ctx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for i := range students {
			st := &students[i]
			report.Checked++

			completed := totals[st.ID]
			expected := expectedNeed(*st.FinancialNeedBaseline, completed)
			if !drifted(st.FinancialNeed, expected) {
				continue
			}

			want := expected
			report.Drifted = append(report.Drifted, models.NeedDrift{
				StudentID:      st.ID,
				DisplayName:    st.DisplayName,
				Recorded:       st.FinancialNeed,
				Expected:       &want,
				CompletedTotal: completed,
			})
			s.logger.Warn().
				Str("studentId", st.ID.String()).
				Float64("expected", expected).
				Float64("completedTotal", completed).
				Msg("Financial need drift detected")

			if fix {
				if err := tx.Principals().SetFinancialNeed(ctx, st.ID, expected, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("drifted", len(report.Drifted)).
		Bool("fixed", fix).
		Msg("Financial need reconciliation finished")
	return report, nil
}
