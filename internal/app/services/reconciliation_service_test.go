package services

import (
	"testing"
)

func TestReconcileFinancialNeed(t *testing.T) {
	f := newFixture(t, true)
	healthy := f.addStudent(t, "asha", floatPtr(5000))
	drifting := f.addStudent(t, "kiran", floatPtr(1000))
	f.addStudent(t, "no-baseline", nil)
	alumni := f.addAlumni(t, "ravi")

	pay := func(student Actor, amount float64, txn string) {
		req, err := f.svc.Payments.CreateRequest(f.ctx, alumni.ID, student.ID, amount, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Payments.Approve(f.ctx, req.ID, student.ID, "x@upi"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.Payments.Complete(f.ctx, req.ID, alumni.ID, txn); err != nil {
			t.Fatal(err)
		}
	}
	pay(healthy, 2000, "T1")
	pay(drifting, 400, "T2")

	// Simulate an out-of-band edit that broke the balance.
	if err := f.store.Principals().SetFinancialNeed(f.ctx, drifting.ID, 900, f.clock.Now()); err != nil {
		t.Fatal(err)
	}

	report, err := f.svc.Reconciliation.ReconcileFinancialNeed(f.ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Checked != 2 || len(report.Drifted) != 1 || report.Fixed {
		t.Fatalf("unexpected report %+v", report)
	}
	d := report.Drifted[0]
	if d.StudentID != drifting.ID || *d.Recorded != 900 || *d.Expected != 600 || d.CompletedTotal != 400 {
		t.Fatalf("unexpected drift %+v", d)
	}
	if need := f.need(t, drifting); *need != 900 {
		t.Fatal("a dry run must not rewrite needs")
	}

	if _, err := f.svc.Reconciliation.ReconcileFinancialNeed(f.ctx, true); err != nil {
		t.Fatal(err)
	}
	if need := f.need(t, drifting); *need != 600 {
		t.Fatalf("expected need fixed to 600, got %v", *need)
	}

	again, _ := f.svc.Reconciliation.ReconcileFinancialNeed(f.ctx, false)
	if len(again.Drifted) != 0 {
		t.Fatalf("expected a clean ledger after fixing, got %+v", again.Drifted)
	}
}
