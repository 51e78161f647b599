package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for visit dates
const DateLayout = "2006-01-02"

// ClientType classifies a client by visit history
type ClientType string

const (
	ClientNew ClientType = "new"
	ClientOld ClientType = "old"
)

// VisitPurpose tags the intent of a visit
type VisitPurpose string

const (
	PurposeOpenAccount      VisitPurpose = "open_account"
	PurposeFollowPapers     VisitPurpose = "follow_papers"
	PurposeFollowPayment    VisitPurpose = "follow_payment"
	PurposeFollowQuotations VisitPurpose = "follow_quotations"
	PurposeDelivery         VisitPurpose = "delivery"
	PurposeRenewDeal        VisitPurpose = "renew_deal"
	PurposeReviewInvoice    VisitPurpose = "review_invoice"
	PurposeFollowUp         VisitPurpose = "follow_up"
)

// VisitPurposes lists every purpose in display order
var VisitPurposes = []VisitPurpose{
	PurposeOpenAccount,
	PurposeFollowPapers,
	PurposeFollowPayment,
	PurposeFollowQuotations,
	PurposeDelivery,
	PurposeRenewDeal,
	PurposeReviewInvoice,
	PurposeFollowUp,
}

// Valid reports whether p belongs to the fixed enumeration
func (p VisitPurpose) Valid() bool {
	for _, known := range VisitPurposes {
		if p == known {
			return true
		}
	}
	return false
}

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Visit is a single dated record of a representative contacting a client
type Visit struct {
	ID             string         `json:"id"`
	RepID          int64          `json:"repId"`
	RepName        string         `json:"repName"`
	VisitDate      string         `json:"visitDate"` // YYYY-MM-DD
	ClientName     string         `json:"clientName"`
	EmployeeName   string         `json:"employeeName"`
	EmployeePhone  string         `json:"employeePhone"`
	CompanyEmail   string         `json:"companyEmail"`
	ClientLocation *Coordinates   `json:"clientLocation"`
	ClientType     ClientType     `json:"clientType"`
	VisitPurposes  []VisitPurpose `json:"visitPurposes"`
	Notes          string         `json:"notes"`
}

// Date parses VisitDate in loc
func (v Visit) Date(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, v.VisitDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid visit date %q: %w", v.VisitDate, err)
	}
	return t, nil
}
