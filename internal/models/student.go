package models

import (
	"fmt"
	"time"
)

// StudentStatus tracks whether a student is still enrolled.
type StudentStatus string

const (
	StudentActive StudentStatus = "Active"
	StudentLeft   StudentStatus = "Left"
)

// Student is an enrolled (or formerly enrolled) student of the institute.
// Students are never deleted; leaving the institute flips Status to LEFT.
type Student struct {
	// ID is the externally visible identifier, format "CE<year><seq>".
	ID string `json:"id"`

	// Name is the student's full name.
	Name string `json:"name"`

	// GuardianName is the parent or guardian on record.
	GuardianName string `json:"guardianName"`

	// Contact is the guardian's phone number.
	Contact string `json:"contact"`

	// Email is the contact email address.
	Email string `json:"email"`

	// Batch is the name of the batch the student attends. This is a loose
	// label, not a foreign key: batch removal leaves it dangling.
	Batch string `json:"batch"`

	// EnrollmentDate is when the student joined.
	EnrollmentDate time.Time `json:"enrollmentDate"`

	// Status is ACTIVE or LEFT.
	Status StudentStatus `json:"status"`

	// TotalFees is the gross fee for the course. Non-negative.
	TotalFees float64 `json:"totalFees"`

	// Discount is subtracted from TotalFees. Non-negative; expected to stay
	// below TotalFees but not enforced.
	Discount float64 `json:"discount"`

	// Payments is the append-only payment history, in insertion order.
	// Consumers that want a ledger sort by date at the presentation boundary.
	Payments []Payment `json:"payments"`
}

// NetPayable is the fee actually owed: TotalFees minus Discount.
func (s *Student) NetPayable() float64 {
	return s.TotalFees - s.Discount
}

// TotalPaid sums every recorded payment.
func (s *Student) TotalPaid() float64 {
	var total float64
	for _, p := range s.Payments {
		total += p.Amount
	}
	return total
}

// BalanceDue is the outstanding amount: NetPayable minus TotalPaid.
// This is the single balance formula; all fee summaries must use it.
func (s *Student) BalanceDue() float64 {
	return s.NetPayable() - s.TotalPaid()
}

// Clone returns a deep copy, so callers can hand out students without
// sharing the payments slice.
func (s Student) Clone() Student {
	out := s
	if s.Payments != nil {
		out.Payments = make([]Payment, len(s.Payments))
		copy(out.Payments, s.Payments)
	}
	return out
}

// NewStudentID formats the externally visible student id, e.g. CE2024007.
func NewStudentID(year, seq int) string {
	return fmt.Sprintf("CE%d%03d", year, seq)
}
