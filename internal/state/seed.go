package state

import (
	"time"

	"github.com/coacherp/coacherp/internal/models"
)

// Seed returns the starter dataset loaded into a fresh install, so the
// dashboard is not empty before the first remote document exists.
func Seed() models.AppState {
	return models.AppState{
		Batches: []string{
			"JEE Mains 2025",
			"NEET 2025",
			"JEE Advanced 2024",
			"Foundation IX",
			"Foundation X",
		},
		TeamMembers: []models.TeamMember{
			{ID: "TM001", Name: "Ravi Kumar", Role: "Physics Faculty"},
			{ID: "TM002", Name: "Sunita Sharma", Role: "Counselor"},
		},
		Students: []models.Student{
			{
				ID:             "CE2024001",
				Name:           "Aarav Sharma",
				GuardianName:   "Rajesh Sharma",
				Contact:        "9876543210",
				Email:          "aarav.sharma@email.com",
				Batch:          "JEE Mains 2025",
				EnrollmentDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
				Status:         models.StudentActive,
				TotalFees:      120000,
				Discount:       10000,
				Payments: []models.Payment{
					{ID: "PAY001", Date: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), Amount: 50000, Mode: models.PaymentUPI},
					{ID: "PAY002", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Amount: 30000, Mode: models.PaymentCard},
				},
			},
			{
				ID:             "CE2024002",
				Name:           "Diya Patel",
				GuardianName:   "Mitesh Patel",
				Contact:        "9876543211",
				Email:          "diya.patel@email.com",
				Batch:          "NEET 2025",
				EnrollmentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				Status:         models.StudentActive,
				TotalFees:      150000,
				Discount:       0,
				Payments: []models.Payment{
					{ID: "PAY003", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Amount: 75000, Mode: models.PaymentCheque},
				},
			},
			{
				ID:             "CE2024003",
				Name:           "Rohan Singh",
				GuardianName:   "Sandeep Singh",
				Contact:        "9876543212",
				Email:          "rohan.singh@email.com",
				Batch:          "JEE Advanced 2024",
				EnrollmentDate: time.Date(2023, 7, 20, 0, 0, 0, 0, time.UTC),
				Status:         models.StudentLeft,
				TotalFees:      180000,
				Discount:       20000,
				Payments: []models.Payment{
					{ID: "PAY004", Date: time.Date(2023, 7, 20, 0, 0, 0, 0, time.UTC), Amount: 80000, Mode: models.PaymentCash},
					{ID: "PAY005", Date: time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC), Amount: 80000, Mode: models.PaymentUPI},
				},
			},
			{
				ID:             "CE2024004",
				Name:           "Priya Verma",
				GuardianName:   "Anil Verma",
				Contact:        "9876543213",
				Email:          "priya.verma@email.com",
				Batch:          "JEE Mains 2025",
				EnrollmentDate: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
				Status:         models.StudentActive,
				TotalFees:      120000,
				Discount:       5000,
				Payments: []models.Payment{
					{ID: "PAY006", Date: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), Amount: 60000, Mode: models.PaymentCard},
				},
			},
		},
	}
}
