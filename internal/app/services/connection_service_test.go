package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

func TestSendRequestStatusIsSymmetric(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	req, err := f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Message != models.DefaultConnectionMessage {
		t.Fatalf("default message not applied: %q", req.Message)
	}
	if req.Sender.DisplayName != "asha" || req.Receiver.DisplayName != "ravi" {
		t.Fatalf("principal refs not denormalised: %+v", req)
	}

	mine, err := f.svc.Connections.CheckStatus(f.ctx, student.ID, alumni.ID)
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := f.svc.Connections.CheckStatus(f.ctx, alumni.ID, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if mine.Status != theirs.Status || mine.Status != string(models.ConnectionPending) {
		t.Fatalf("status mismatch: %q vs %q", mine.Status, theirs.Status)
	}
	if mine.IsSender == theirs.IsSender || !mine.IsSender {
		t.Fatalf("isSender must be opposite: %+v %+v", mine, theirs)
	}
	if !mine.IsPending || !mine.CanConnect {
		t.Fatalf("unexpected pending view %+v", mine)
	}
}

func TestSendRequestGuards(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	_, err := f.svc.Connections.SendRequest(f.ctx, student, student.ID, student.Kind, "")
	requireErr(t, err, apperrors.ErrSelfConnection, apperrors.ErrValidationFailed)

	_, err = f.svc.Connections.SendRequest(f.ctx, student, uuid.New(), models.KindAlumni, "")
	requireErr(t, err, apperrors.ErrPrincipalNotFound, apperrors.ErrResourceNotFound)

	_, err = f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, models.PrincipalKind("Admin"), "")
	requireErr(t, err, apperrors.ErrInvalidKind, apperrors.ErrValidationFailed)

	req, err := f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "hello")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "again")
	requireErr(t, err, apperrors.ErrDuplicateRequest, apperrors.ErrDuplicateState)

	_, err = f.svc.Connections.SendRequest(f.ctx, alumni, student.ID, student.Kind, "reverse")
	requireErr(t, err, apperrors.ErrDuplicateRequest, apperrors.ErrDuplicateState)

	if _, err := f.svc.Connections.Accept(f.ctx, req.ID, alumni.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "")
	requireErr(t, err, apperrors.ErrAlreadyConnected, apperrors.ErrDuplicateState)

	view, _ := f.svc.Connections.CheckStatus(f.ctx, student.ID, alumni.ID)
	if view.CanConnect || view.Status != string(models.ConnectionAccepted) {
		t.Fatalf("accepted pair must not be connectable: %+v", view)
	}
}

func TestRespondRules(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	req, err := f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Connections.Accept(f.ctx, uuid.New(), alumni.ID)
	requireErr(t, err, apperrors.ErrConnectionNotFound, apperrors.ErrResourceNotFound)

	_, err = f.svc.Connections.Accept(f.ctx, req.ID, student.ID)
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)

	accepted, err := f.svc.Connections.Accept(f.ctx, req.ID, alumni.ID)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != models.ConnectionAccepted || !accepted.UpdatedAt.After(req.UpdatedAt) {
		t.Fatalf("accept did not persist: %+v", accepted)
	}

	_, err = f.svc.Connections.Reject(f.ctx, req.ID, alumni.ID)
	requireErr(t, err, nil, apperrors.ErrInvalidState)
}

func TestResendAfterRejection(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	first, err := f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Connections.Reject(f.ctx, first.ID, alumni.ID); err != nil {
		t.Fatal(err)
	}

	view, _ := f.svc.Connections.CheckStatus(f.ctx, student.ID, alumni.ID)
	if view.Status != string(models.ConnectionRejected) || !view.CanConnect {
		t.Fatalf("rejected pair must allow a resend: %+v", view)
	}

	second, err := f.svc.Connections.SendRequest(f.ctx, student, alumni.ID, alumni.Kind, "")
	if err != nil {
		t.Fatalf("resend refused: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("resend must create a new record")
	}

	sent, _ := f.svc.Connections.ListSent(f.ctx, student.ID)
	if len(sent) != 2 || sent[0].ID != second.ID {
		t.Fatalf("sent list should hold both, newest first: %+v", sent)
	}
	pending, _ := f.svc.Connections.ListPending(f.ctx, alumni.ID)
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("pending list should hold the new request only: %+v", pending)
	}
}

func TestCheckStatusWithoutRecord(t *testing.T) {
	f := newFixture(t, true)
	view, err := f.svc.Connections.CheckStatus(f.ctx, uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != models.ConnectionStatusNone || !view.CanConnect || view.IsPending || view.IsSender {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestListConnectionsReturnsAcceptedOnly(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	connected := f.addAlumni(t, "ravi")
	pending := f.addAlumni(t, "meera")

	f.connect(t, student, connected)
	if _, err := f.svc.Connections.SendRequest(f.ctx, student, pending.ID, pending.Kind, ""); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.Connections.ListConnections(f.ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Counterpart(student.ID).ID != connected.ID {
		t.Fatalf("unexpected connections %+v", list)
	}
}

func TestConcurrentSendsCreateOneRequest(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	const senders = 12
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := student, alumni
			if i%2 == 1 {
				from, to = alumni, student
			}
			_, err := f.svc.Connections.SendRequest(f.ctx, from, to.ID, to.Kind, "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireErr(t, err, apperrors.ErrDuplicateRequest, apperrors.ErrDuplicateState)
	}
	if ok != 1 {
		t.Fatalf("expected exactly one request, got %d", ok)
	}
}
