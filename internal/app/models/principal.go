package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// PrincipalKind discriminates the two account types.
type PrincipalKind string

const (
	KindStudent PrincipalKind = "Student"
	KindAlumni  PrincipalKind = "Alumni"
)

// Valid reports whether k is one of the known kinds.
func (k PrincipalKind) Valid() bool {
	return k == KindStudent || k == KindAlumni
}

// Counterpart returns the kind a principal of kind k connects with.
func (k PrincipalKind) Counterpart() PrincipalKind {
	if k == KindStudent {
		return KindAlumni
	}
	return KindStudent
}

// PrincipalRef is the denormalised copy of a principal embedded in connection
// requests, conversations and messages. It is captured at creation time and never
// refreshed, so later profile renames do not rewrite history.
type PrincipalRef struct {
	ID          uuid.UUID     `json:"userId"`
	Kind        PrincipalKind `json:"userType"`
	DisplayName string        `json:"username"`
	AvatarRef   *string       `json:"profilePicture,omitempty"`
}

// Principal is the capability set shared by students and alumni.
type Principal interface {
	Ref() PrincipalRef
}

// Student is a scholarship candidate.
type Student struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DisplayName   string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	AvatarRef     *string   `json:"profilePicture,omitempty" db:"profile_picture"`
	CurrentDegree *string   `json:"currentDegree,omitempty" db:"current_degree"`
	Branch        *string   `json:"branch,omitempty" db:"branch"`
	UPIID         *string   `json:"-" db:"upi_id"`
	// FinancialNeed is the outstanding balance, decremented by completed payments.
	FinancialNeed *float64 `json:"financialNeed,omitempty" db:"financial_need"`
	// FinancialNeedBaseline is the need as last declared by the student; FinancialNeed
	// must equal max(0, baseline - sum of completed payments).
	FinancialNeedBaseline *float64  `json:"-" db:"financial_need_baseline"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"`
}

// Ref implements Principal
func (s *Student) Ref() PrincipalRef {
	return PrincipalRef{ID: s.ID, Kind: KindStudent, DisplayName: s.DisplayName, AvatarRef: s.AvatarRef}
}

// Alumni is a donor.
type Alumni struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	AvatarRef   *string   `json:"profilePicture,omitempty" db:"profile_picture"`
	Company     *string   `json:"company,omitempty" db:"company"`
	Designation *string   `json:"designation,omitempty" db:"designation"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Ref implements Principal
func (a *Alumni) Ref() PrincipalRef {
	return PrincipalRef{ID: a.ID, Kind: KindAlumni, DisplayName: a.DisplayName, AvatarRef: a.AvatarRef}
}

// CanonicalPair orders two ids so that an unordered pair always maps to the same key.
func CanonicalPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
