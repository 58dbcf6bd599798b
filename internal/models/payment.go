package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMode is the instrument a fee payment was made with.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "Cash"
	PaymentCard   PaymentMode = "Card"
	PaymentUPI    PaymentMode = "UPI"
	PaymentCheque PaymentMode = "Cheque"
)

// Valid reports whether m is one of the known payment modes.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentCheque:
		return true
	}
	return false
}

// Payment is a single fee payment recorded against a student.
// Payments are append-only: once created they are never edited or removed.
type Payment struct {
	// ID is unique within the owning student's payment list.
	ID string `json:"id"`

	// Date is when the payment was recorded.
	Date time.Time `json:"date"`

	// Amount is the paid amount. Always positive.
	Amount float64 `json:"amount"`

	// Mode is the payment instrument.
	Mode PaymentMode `json:"mode"`

	// ReferenceImage optionally holds an encoded receipt image or a URL.
	ReferenceImage string `json:"referenceImage,omitempty"`
}

// NewPaymentID returns an id for a single recorded payment, derived from the
// creation timestamp ("PAY" + unix millis).
func NewPaymentID(now time.Time) string {
	return fmt.Sprintf("PAY%d", now.UnixMilli())
}

// NewBatchPaymentID returns an id for a payment created as part of a batch
// insert. Batch inserts share one timestamp, so a random suffix keeps the
// ids unique within the student's list.
func NewBatchPaymentID(now time.Time) string {
	return fmt.Sprintf("PAY%d%s", now.UnixMilli(), uuid.NewString()[:5])
}
