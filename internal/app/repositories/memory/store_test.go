package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

func seedPair(t *testing.T, s *Store) (*models.Student, *models.Alumni) {
	t.Helper()
	ctx := context.Background()
	need := 1000.0
	student := &models.Student{ID: uuid.New(), DisplayName: "asha", FinancialNeed: &need, FinancialNeedBaseline: &need}
	alumni := &models.Alumni{ID: uuid.New(), DisplayName: "ravi"}
	if err := s.Principals().CreateStudent(ctx, student); err != nil {
		t.Fatal(err)
	}
	if err := s.Principals().CreateAlumni(ctx, alumni); err != nil {
		t.Fatal(err)
	}
	return student, alumni
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	student, alumni := seedPair(t, s)
	now := time.Now()

	req := &models.PaymentRequest{
		ID: uuid.New(), SenderID: alumni.ID, RecipientID: student.ID,
		Amount: 200, Status: models.PaymentApproved, CreatedAt: now, UpdatedAt: now, ApprovedAt: &now,
	}
	if err := s.Payments().Create(ctx, req); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("notification sink down")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		txn := "TXN1"
		if _, err := tx.Payments().Transition(ctx, req.ID, models.PaymentTransition{
			From: models.PaymentApproved, To: models.PaymentCompleted, At: now, TransactionID: &txn,
		}); err != nil {
			return err
		}
		if _, err := tx.Principals().DecrementFinancialNeed(ctx, student.ID, req.Amount, now); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the unit error, got %v", err)
	}

	stored, _ := s.Payments().GetByID(ctx, req.ID)
	if stored.Status != models.PaymentApproved || stored.TransactionID != nil {
		t.Fatalf("payment was not rolled back: %+v", stored)
	}
	st, _ := s.Principals().GetStudent(ctx, student.ID)
	if *st.FinancialNeed != 1000 {
		t.Fatalf("financial need was not rolled back: %v", *st.FinancialNeed)
	}
}

func TestConnectionPairUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	student, alumni := seedPair(t, s)

	newReq := func(from, to models.PrincipalRef) *models.ConnectionRequest {
		return &models.ConnectionRequest{ID: uuid.New(), Sender: from, Receiver: to, Status: models.ConnectionPending, CreatedAt: time.Now()}
	}

	first := newReq(student.Ref(), alumni.Ref())
	if err := s.Connections().Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Connections().Create(ctx, newReq(alumni.Ref(), student.Ref())); !errors.Is(err, apperrors.ErrActivePairExists) {
		t.Fatalf("reverse direction must hit the pair constraint, got %v", err)
	}

	if _, err := s.Connections().UpdateStatus(ctx, first.ID, models.ConnectionPending, models.ConnectionRejected, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.Connections().Create(ctx, newReq(student.Ref(), alumni.Ref())); err != nil {
		t.Fatalf("a rejected pair may send again: %v", err)
	}
}

func TestConditionalTransitionUnderContention(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	student, alumni := seedPair(t, s)
	req := &models.PaymentRequest{ID: uuid.New(), SenderID: alumni.ID, RecipientID: student.ID, Amount: 10, Status: models.PaymentPending}
	if err := s.Payments().Create(ctx, req); err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Payments().Transition(ctx, req.ID, models.PaymentTransition{
				From: models.PaymentPending, To: models.PaymentApproved, At: time.Now(),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, apperrors.ErrTransitionConflict):
			lost++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if won != 1 || lost != workers-1 {
		t.Fatalf("won=%d lost=%d", won, lost)
	}
}

func TestDecrementFinancialNeedLeavesZeroAndNilUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	zero := 0.0
	withZero := &models.Student{ID: uuid.New(), FinancialNeed: &zero}
	withNil := &models.Student{ID: uuid.New()}
	for _, st := range []*models.Student{withZero, withNil} {
		if err := s.Principals().CreateStudent(ctx, st); err != nil {
			t.Fatal(err)
		}
		got, err := s.Principals().DecrementFinancialNeed(ctx, st.ID, 50, time.Now())
		if err != nil || got != nil {
			t.Fatalf("expected untouched need, got %v err %v", got, err)
		}
	}
}

func TestDecrementFinancialNeedClampsNegativeNeed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	negative := -50.0
	st := &models.Student{ID: uuid.New(), FinancialNeed: &negative}
	if err := s.Principals().CreateStudent(ctx, st); err != nil {
		t.Fatal(err)
	}

	got, err := s.Principals().DecrementFinancialNeed(ctx, st.ID, 10, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != 0 {
		t.Fatalf("need = %v, want 0", got)
	}
}

func TestNotificationPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	recipient := uuid.New()
	base := time.Now()
	for i := 0; i < 5; i++ {
		n := &models.Notification{ID: uuid.New(), Recipient: models.NotificationParty{ID: recipient}, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Notifications().Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := s.Notifications().List(ctx, recipient, models.NotificationFilter{Offset: 4, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(page) != 1 {
		t.Fatalf("total=%d page=%d", total, len(page))
	}
	if !page[0].CreatedAt.Equal(base) {
		t.Fatal("the last page should hold the oldest notification")
	}
}
