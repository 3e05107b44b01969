package services

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories/memory"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	for _, amount := range []float64{-5, 0, math.NaN(), math.Inf(1)} {
		_, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, amount, "")
		requireErr(t, err, apperrors.ErrInvalidAmount, apperrors.ErrValidationFailed)
	}

	_, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, uuid.New(), 500, "")
	requireErr(t, err, apperrors.ErrRecipientNotFound, apperrors.ErrResourceNotFound)

	req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != models.PaymentPending || req.Message != "Payment request of ₹500" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.TransactionID != nil || req.ApprovedAt != nil || req.CompletedAt != nil {
		t.Fatal("pending request must not carry approval or completion data")
	}
}

func TestApproveGuards(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	other := f.addStudent(t, "kiran", nil)
	alumni := f.addAlumni(t, "ravi")

	req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "books")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Payments.Approve(f.ctx, uuid.New(), student.ID, "a@upi")
	requireErr(t, err, apperrors.ErrPaymentRequestNotFound, apperrors.ErrResourceNotFound)

	_, err = f.svc.Payments.Approve(f.ctx, req.ID, other.ID, "a@upi")
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)

	_, err = f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "  ")
	requireErr(t, err, apperrors.ErrMissingUPIID, apperrors.ErrValidationFailed)

	_, err = f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN1")
	requireErr(t, err, nil, apperrors.ErrInvalidState)

	approved, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "asha@upi")
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != models.PaymentApproved || approved.ApprovedAt == nil {
		t.Fatalf("approval not recorded: %+v", approved)
	}

	_, err = f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "asha@upi")
	requireErr(t, err, nil, apperrors.ErrInvalidState)
	_, err = f.svc.Payments.Reject(f.ctx, req.ID, student.ID, "")
	requireErr(t, err, nil, apperrors.ErrInvalidState)
}

func TestStateErrorsNameTheExpectedStatus(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "")
	if err != nil {
		t.Fatal(err)
	}

	// the status guard runs before the missing transaction id check
	_, err = f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "")
	requireErr(t, err, nil, apperrors.ErrInvalidState)
	if err.Error() != "Payment request is not approved. Current status: pending" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = f.svc.Payments.GetDetailsForAlumni(f.ctx, req.ID, alumni.ID)
	if err == nil || err.Error() != "Payment request is not approved. Current status: pending" {
		t.Fatalf("unexpected details error %v", err)
	}

	if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "asha@upi"); err != nil {
		t.Fatal(err)
	}

	// and before the missing UPI id check
	_, err = f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "")
	requireErr(t, err, nil, apperrors.ErrInvalidState)
	if err.Error() != "Payment request already approved" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTransitionRejectsIllegalSteps(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")
	svc := f.svc.Payments.(*paymentServiceImpl)

	req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		from, to models.PaymentStatus
	}{
		{"pending to completed", models.PaymentPending, models.PaymentCompleted},
		{"approved to rejected", models.PaymentApproved, models.PaymentRejected},
		{"rejected to approved", models.PaymentRejected, models.PaymentApproved},
		{"completed to approved", models.PaymentCompleted, models.PaymentApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.transition(f.ctx, f.store, req.ID, models.PaymentTransition{From: tt.from, To: tt.to, At: f.clock.Now()})
			requireErr(t, err, nil, apperrors.ErrInvalidState)
		})
	}

	stored, err := f.store.Payments().GetByID(f.ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.PaymentPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestPaymentEndToEnd(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 2000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "test@upi"); err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "")
	requireErr(t, err, apperrors.ErrMissingTransactionID, apperrors.ErrValidationFailed)

	_, err = f.svc.Payments.Complete(f.ctx, req.ID, uuid.New(), "TXN123456")
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)

	done, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN123456")
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != models.PaymentCompleted || done.TransactionID == nil || *done.TransactionID != "TXN123456" {
		t.Fatalf("completion not recorded: %+v", done)
	}
	if done.ApprovedAt == nil || done.CompletedAt == nil || !done.CompletedAt.After(*done.ApprovedAt) {
		t.Fatalf("timestamps not recorded: %+v", done)
	}

	if need := f.need(t, student); need == nil || *need != 3000 {
		t.Fatalf("expected financial need 3000, got %v", need)
	}

	st, _ := f.store.Principals().GetStudent(f.ctx, student.ID)
	if st.UPIID == nil || *st.UPIID != "test@upi" {
		t.Fatal("first UPI id must be stored on the student")
	}

	studentNotes := f.notificationsFor(t, student.ID)
	alumniNotes := f.notificationsFor(t, alumni.ID)
	if len(studentNotes)+len(alumniNotes) != 3 {
		t.Fatalf("expected three notifications, got %d + %d", len(studentNotes), len(alumniNotes))
	}

	// Newest first: completion then creation.
	if studentNotes[0].Type != models.NotificationPaymentCompleted ||
		studentNotes[0].Message != "An alumni has completed payment of ₹2000. Transaction ID: TXN123456" {
		t.Fatalf("unexpected completion notification %+v", studentNotes[0])
	}
	if studentNotes[1].Type != models.NotificationPaymentRequest ||
		studentNotes[1].ActionURL == nil || *studentNotes[1].ActionURL != StudentNotificationsURL {
		t.Fatalf("unexpected creation notification %+v", studentNotes[1])
	}
	approval := alumniNotes[0]
	if approval.Type != models.NotificationPaymentApproved ||
		approval.Message != "Your payment request of ₹2000 has been approved. Pay to UPI ID: test@upi" {
		t.Fatalf("unexpected approval notification %+v", approval)
	}
	if approval.RelatedID == nil || *approval.RelatedID != req.ID || *approval.RelatedKind != models.RelatedPaymentRequest {
		t.Fatal("notification must reference the payment request")
	}
	if approval.Sender.ID != student.ID || approval.Sender.Kind != string(models.KindStudent) {
		t.Fatalf("unexpected sender %+v", approval.Sender)
	}
}

func TestCompleteIsIdempotentForTheSameTransaction(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 1000, "")
	if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "a@upi"); err != nil {
		t.Fatal(err)
	}
	first, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN1")
	if err != nil {
		t.Fatal(err)
	}

	replayed, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN1")
	if err != nil {
		t.Fatalf("retry with the same transaction must succeed: %v", err)
	}
	if !replayed.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatal("retry must return the stored record")
	}
	if need := f.need(t, student); *need != 4000 {
		t.Fatalf("retry must not decrement again, need=%v", *need)
	}
	if n := len(f.notificationsFor(t, student.ID)); n != 2 {
		t.Fatalf("retry must not notify again, got %d", n)
	}

	_, err = f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN2")
	requireErr(t, err, nil, apperrors.ErrInvalidState)
}

func TestFinancialNeedFloorsAtZero(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(100))
	alumni := f.addAlumni(t, "ravi")

	req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "")
	if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "a@upi"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN1"); err != nil {
		t.Fatal(err)
	}
	if need := f.need(t, student); need == nil || *need != 0 {
		t.Fatalf("expected floor at zero, got %v", need)
	}
}

func TestZeroOrMissingNeedIsLeftUntouched(t *testing.T) {
	tests := []struct {
		name string
		need *float64
	}{
		{"zero", floatPtr(0)},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			student := f.addStudent(t, "asha", tt.need)
			alumni := f.addAlumni(t, "ravi")

			req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 300, "")
			if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "a@upi"); err != nil {
				t.Fatal(err)
			}
			if _, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, "TXN1"); err != nil {
				t.Fatal(err)
			}

			got := f.need(t, student)
			if (tt.need == nil) != (got == nil) || (got != nil && *got != *tt.need) {
				t.Fatalf("need changed from %v to %v", tt.need, got)
			}
		})
	}
}

func TestConcurrentApproveHasOneWinner(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")
	req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 500, "")

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "a@upi")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireErr(t, err, nil, apperrors.ErrInvalidState)
	}
	if ok != 1 {
		t.Fatalf("expected exactly one approval, got %d", ok)
	}
	if n := len(f.notificationsFor(t, alumni.ID)); n != 1 {
		t.Fatalf("expected one approval notification, got %d", n)
	}
}

func TestUPIIDFirstSubmissionWins(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	for _, upi := range []string{"first@upi", "second@upi"} {
		req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 100, "")
		if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, upi); err != nil {
			t.Fatal(err)
		}
		details, err := f.svc.Payments.GetDetailsForAlumni(f.ctx, req.ID, alumni.ID)
		if err != nil {
			t.Fatal(err)
		}
		if details.UPIID != "first@upi" || details.RecipientName != "asha" || details.Amount != 100 {
			t.Fatalf("unexpected details %+v", details)
		}
	}
}

func TestGetDetailsForAlumniGuards(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")
	other := f.addAlumni(t, "meera")

	req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 100, "")

	_, err := f.svc.Payments.GetDetailsForAlumni(f.ctx, req.ID, alumni.ID)
	requireErr(t, err, nil, apperrors.ErrInvalidState)

	if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "a@upi"); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.Payments.GetDetailsForAlumni(f.ctx, req.ID, other.ID)
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)
}

func TestRejectNotifiesAlumniWithReason(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	withReason, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 100, "")
	plain, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, 200, "")

	rejected, err := f.svc.Payments.Reject(f.ctx, withReason.ID, student.ID, "already funded")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != models.PaymentRejected || rejected.ApprovedAt != nil {
		t.Fatalf("unexpected rejected record %+v", rejected)
	}
	if _, err := f.svc.Payments.Reject(f.ctx, plain.ID, student.ID, ""); err != nil {
		t.Fatal(err)
	}

	notes := f.notificationsFor(t, alumni.ID)
	if len(notes) != 2 {
		t.Fatalf("expected two rejection notifications, got %d", len(notes))
	}
	if notes[0].Message != "Your payment request was rejected." || notes[0].Type != models.NotificationPaymentRequest {
		t.Fatalf("unexpected notification %+v", notes[0])
	}
	if notes[1].Message != "Your payment request was rejected. Reason: already funded" {
		t.Fatalf("unexpected notification %+v", notes[1])
	}
	if notes[1].ActionURL != nil {
		t.Fatal("rejection notifications carry no action url")
	}
}

func TestCompleteRollsBackWhenNotificationFails(t *testing.T) {
	store := memory.NewStore()
	seed := newFixtureOn(t, store, true)
	student := seed.addStudent(t, "asha", floatPtr(5000))
	alumni := seed.addAlumni(t, "ravi")
	req, _ := seed.svc.Payments.CreateRequest(seed.ctx, alumni.ID, student.ID, 2000, "")
	if _, err := seed.svc.Payments.Approve(seed.ctx, req.ID, student.ID, "a@upi"); err != nil {
		t.Fatal(err)
	}

	broken := NewServices(&brokenSinkStore{Store: store}, Options{Clock: seed.clock}, zerolog.Nop())
	_, err := broken.Payments.Complete(seed.ctx, req.ID, alumni.ID, "TXN1")
	if !errors.Is(err, errSinkDown) {
		t.Fatalf("expected sink failure, got %v", err)
	}

	stored, _ := store.Payments().GetByID(seed.ctx, req.ID)
	if stored.Status != models.PaymentApproved || stored.TransactionID != nil {
		t.Fatalf("status write must roll back: %+v", stored)
	}
	if need := seed.need(t, student); *need != 5000 {
		t.Fatalf("need decrement must roll back, got %v", *need)
	}
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, true)
	a := f.addStudent(t, "asha", floatPtr(5000))
	b := f.addStudent(t, "kiran", floatPtr(5000))
	alumni := f.addAlumni(t, "ravi")

	complete := func(student Actor, amount float64, txn string) {
		req, _ := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, amount, "")
		if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "x@upi"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, txn); err != nil {
			t.Fatal(err)
		}
	}
	complete(a, 100, "T1")
	complete(a, 200, "T2")
	complete(b, 300, "T3")
	if _, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, b.ID, 50, ""); err != nil {
		t.Fatal(err)
	}

	stats, err := f.svc.Payments.DashboardStats(f.ctx, alumni.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := models.DashboardStats{Scholarships: 3, PendingRequests: 1, Mentored: 2}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}

	sent, _ := f.svc.Payments.ListSent(f.ctx, alumni.ID)
	if len(sent) != 4 || sent[0].Status != models.PaymentPending || sent[0].Recipient == nil || sent[0].Recipient.DisplayName != "kiran" {
		t.Fatalf("sent list not newest first with recipient refs: %+v", sent[0])
	}
	received, _ := f.svc.Payments.ListReceived(f.ctx, a.ID)
	if len(received) != 2 || received[0].Sender == nil || received[0].Sender.ID != alumni.ID {
		t.Fatalf("received list missing sender refs: %+v", received)
	}
}
