package service

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/state"
)

var (
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrInvalidPaymentMode = errors.New("unknown payment mode")
)

// FeeService records payments and produces fee summaries.
type FeeService struct {
	store *state.Store
}

// NewFeeService creates a FeeService over the given store.
func NewFeeService(store *state.Store) *FeeService {
	return &FeeService{store: store}
}

// PaymentInput is one payment to record.
type PaymentInput struct {
	Amount         float64
	Mode           models.PaymentMode
	ReferenceImage string
}

// Ledger is the per-student fee summary shown in the detail view. All three
// figures derive from the one balance formula on Student.
type Ledger struct {
	StudentID  string           `json:"studentId"`
	NetPayable float64          `json:"netPayable"`
	TotalPaid  float64          `json:"totalPaid"`
	BalanceDue float64          `json:"balanceDue"`
	Payments   []models.Payment `json:"payments"` // date-descending
}

// Transaction is one payment joined with its owning student, for the
// institute-wide recent-transactions table.
type Transaction struct {
	StudentID   string         `json:"studentId"`
	StudentName string         `json:"studentName"`
	Payment     models.Payment `json:"payment"`
}

// RecordPayment appends one payment to the student and returns the updated
// record.
func (s *FeeService) RecordPayment(studentID string, in PaymentInput) (models.Student, error) {
	if err := validatePayment(in); err != nil {
		return models.Student{}, err
	}
	now := time.Now()
	p := models.Payment{
		ID:             models.NewPaymentID(now),
		Date:           now,
		Amount:         in.Amount,
		Mode:           in.Mode,
		ReferenceImage: in.ReferenceImage,
	}
	st, err := s.store.AddPayment(studentID, p)
	if err != nil {
		slog.Error("Record payment failed", "student_id", studentID, "error", err)
		return models.Student{}, err
	}
	slog.Info("Payment recorded",
		"student_id", studentID,
		"payment_id", p.ID,
		"amount", p.Amount,
		"mode", p.Mode,
	)
	return st, nil
}

// RecordPayments appends a batch of payments in order. The batch shares one
// timestamp; ids carry a random suffix to stay unique.
func (s *FeeService) RecordPayments(studentID string, ins []PaymentInput) (models.Student, error) {
	for _, in := range ins {
		if err := validatePayment(in); err != nil {
			return models.Student{}, err
		}
	}
	now := time.Now()
	payments := make([]models.Payment, len(ins))
	for i, in := range ins {
		payments[i] = models.Payment{
			ID:             models.NewBatchPaymentID(now),
			Date:           now,
			Amount:         in.Amount,
			Mode:           in.Mode,
			ReferenceImage: in.ReferenceImage,
		}
	}
	st, err := s.store.AddPayments(studentID, payments)
	if err != nil {
		slog.Error("Record payment batch failed", "student_id", studentID, "error", err)
		return models.Student{}, err
	}
	slog.Info("Payment batch recorded", "student_id", studentID, "count", len(payments))
	return st, nil
}

// Ledger returns the fee summary for one student, payments sorted by date
// descending. Storage order is left untouched; sorting happens here, at the
// presentation boundary.
func (s *FeeService) Ledger(studentID string) (Ledger, error) {
	st, ok := s.store.Student(studentID)
	if !ok {
		return Ledger{}, state.ErrStudentNotFound
	}
	payments := make([]models.Payment, len(st.Payments))
	copy(payments, st.Payments)
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.After(payments[j].Date)
	})
	return Ledger{
		StudentID:  st.ID,
		NetPayable: st.NetPayable(),
		TotalPaid:  st.TotalPaid(),
		BalanceDue: st.BalanceDue(),
		Payments:   payments,
	}, nil
}

// Transactions returns every payment across all students, newest first.
// limit <= 0 means no limit.
func (s *FeeService) Transactions(limit int) []Transaction {
	var out []Transaction
	for _, st := range s.store.Students() {
		for _, p := range st.Payments {
			out = append(out, Transaction{StudentID: st.ID, StudentName: st.Name, Payment: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Payment.Date.After(out[j].Payment.Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func validatePayment(in PaymentInput) error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !in.Mode.Valid() {
		return ErrInvalidPaymentMode
	}
	return nil
}
