package service

import "github.com/sakhrdev1-ctrl/Mangsales/internal/domain"

// SeedUsers is the roster written on first run
func SeedUsers() []domain.User {
	return []domain.User{
		{ID: 1, Username: "admin", Name: "Admin User", Role: domain.RoleAdmin, Password: "admin123"},
		{ID: 2, Username: "rep1", Name: "Khalid Al-Harbi", Role: domain.RoleRep, Password: "rep123"},
		{ID: 3, Username: "rep2", Name: "Sara Al-Qahtani", Role: domain.RoleRep, Password: "rep123"},
	}
}

// SeedVisits is the visit roster written on first run, most recent first
func SeedVisits() []domain.Visit {
	return []domain.Visit{
		{
			ID:            "01HM6Z3Q8V0000000000000002",
			RepID:         3,
			RepName:       "Sara Al-Qahtani",
			VisitDate:     "2024-01-16",
			ClientName:    "Gulf Trading Co.",
			EmployeeName:  "Omar Faisal",
			EmployeePhone: "0551234567",
			CompanyEmail:  "info@gulftrading.example",
			ClientType:    domain.ClientOld,
			VisitPurposes: []domain.VisitPurpose{domain.PurposeFollowPayment, domain.PurposeReviewInvoice},
			Notes:         "Payment expected next week.",
		},
		{
			ID:             "01HM6Z3Q8V0000000000000001",
			RepID:          2,
			RepName:        "Khalid Al-Harbi",
			VisitDate:      "2024-01-15",
			ClientName:     "Gulf Trading Co.",
			EmployeeName:   "Omar Faisal",
			EmployeePhone:  "0551234567",
			CompanyEmail:   "info@gulftrading.example",
			ClientLocation: &domain.Coordinates{Latitude: 24.7136, Longitude: 46.6753},
			ClientType:     domain.ClientNew,
			VisitPurposes:  []domain.VisitPurpose{domain.PurposeOpenAccount},
			Notes:          "First meeting, account opened.",
		},
	}
}
