package service

import (
	"sort"
	"time"

	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/state"
)

// DashboardService computes the aggregates behind the dashboard cards and
// charts. Everything derives from the students in the store; outstanding
// dues use the same balance formula as the per-student ledger.
type DashboardService struct {
	store *state.Store
}

// NewDashboardService creates a DashboardService over the given store.
func NewDashboardService(store *state.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Stats is the dashboard summary.
type Stats struct {
	TotalStudents   int     `json:"totalStudents"`
	ActiveStudents  int     `json:"activeStudents"`
	LeftStudents    int     `json:"leftStudents"`
	TotalCollected  float64 `json:"totalCollected"`
	OutstandingDues float64 `json:"outstandingDues"`

	// MonthlyCollections feeds the bar chart, oldest month first.
	MonthlyCollections []MonthlyCollection `json:"monthlyCollections"`

	// BatchOccupancy feeds the distribution chart, in batch-list order.
	BatchOccupancy []BatchCount `json:"batchOccupancy"`
}

// MonthlyCollection is the fees collected in one calendar month.
type MonthlyCollection struct {
	Month string  `json:"month"` // e.g. "Apr 24"
	Fees  float64 `json:"fees"`
}

// BatchCount is the number of students carrying a batch label.
type BatchCount struct {
	Batch    string `json:"batch"`
	Students int    `json:"students"`
}

// Stats computes the current dashboard aggregates.
func (s *DashboardService) Stats() Stats {
	students := s.store.Students()

	stats := Stats{TotalStudents: len(students)}
	monthly := make(map[time.Time]float64)
	byBatch := make(map[string]int)

	for _, st := range students {
		if st.Status == models.StudentActive {
			stats.ActiveStudents++
			// Overpayments do not offset other students' dues.
			if due := st.BalanceDue(); due > 0 {
				stats.OutstandingDues += due
			}
		} else {
			stats.LeftStudents++
		}
		byBatch[st.Batch]++
		for _, p := range st.Payments {
			stats.TotalCollected += p.Amount
			month := time.Date(p.Date.Year(), p.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
			monthly[month] += p.Amount
		}
	}

	months := make([]time.Time, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	stats.MonthlyCollections = make([]MonthlyCollection, len(months))
	for i, m := range months {
		stats.MonthlyCollections[i] = MonthlyCollection{Month: m.Format("Jan 06"), Fees: monthly[m]}
	}

	batches := s.store.Batches()
	stats.BatchOccupancy = make([]BatchCount, len(batches))
	for i, b := range batches {
		stats.BatchOccupancy[i] = BatchCount{Batch: b, Students: byBatch[b]}
	}
	return stats
}
