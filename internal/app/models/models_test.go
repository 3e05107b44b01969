package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentPending, PaymentApproved, true},
		{PaymentPending, PaymentRejected, true},
		{PaymentApproved, PaymentCompleted, true},
		{PaymentPending, PaymentCompleted, false},
		{PaymentApproved, PaymentRejected, false},
		{PaymentRejected, PaymentApproved, false},
		{PaymentCompleted, PaymentPending, false},
		{PaymentApproved, PaymentApproved, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	l1, h1 := CanonicalPair(a, b)
	l2, h2 := CanonicalPair(b, a)
	if l1 != l2 || h1 != h2 {
		t.Fatalf("pair (%s,%s) != (%s,%s)", l1, h1, l2, h2)
	}
	if l1 == h1 {
		t.Fatal("distinct ids collapsed")
	}
}

func TestKindCounterpart(t *testing.T) {
	if KindStudent.Counterpart() != KindAlumni || KindAlumni.Counterpart() != KindStudent {
		t.Fatal("counterpart kinds are wrong")
	}
	if PrincipalKind("Admin").Valid() {
		t.Fatal("unknown kind reported valid")
	}
}

func TestConversationParticipant(t *testing.T) {
	s := Student{ID: uuid.New(), DisplayName: "asha"}
	a := Alumni{ID: uuid.New(), DisplayName: "ravi"}
	conv := Conversation{Participants: [2]PrincipalRef{s.Ref(), a.Ref()}}

	if !conv.IsParticipant(s.ID) || !conv.IsParticipant(a.ID) {
		t.Fatal("participants not recognised")
	}
	if conv.IsParticipant(uuid.New()) {
		t.Fatal("stranger recognised as participant")
	}
	p, _ := conv.Participant(a.ID)
	if p.Kind != KindAlumni || p.DisplayName != "ravi" {
		t.Fatalf("unexpected participant %+v", p)
	}
}
