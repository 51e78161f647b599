// Package dashboard derives the admin reporting figures from the visit roster.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
)

// Filter narrows the roster. Zero values mean "no constraint".
type Filter struct {
	RepID  int64  `json:"repId,omitempty"`
	Start  string `json:"start,omitempty"` // YYYY-MM-DD, inclusive from local midnight
	End    string `json:"end,omitempty"`   // YYYY-MM-DD, inclusive to the last instant of the day
	Search string `json:"search,omitempty"`
}

// Validate checks the date bounds
func (f Filter) Validate() error {
	for _, bound := range []string{f.Start, f.End} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, bound); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", bound)
		}
	}
	return nil
}

// Key identifies the filter for caching
func (f Filter) Key() string {
	return fmt.Sprintf("rep=%d|start=%s|end=%s|q=%s", f.RepID, f.Start, f.End, strings.ToLower(f.Search))
}

// RepStats is one representative's breakdown by client classification
type RepStats struct {
	RepID int64  `json:"repId"`
	Name  string `json:"name"`
	Total int    `json:"total"`
	New   int    `json:"new"`
	Old   int    `json:"old"`
}

// PurposeCount is one bucket of the purpose frequency table
type PurposeCount struct {
	Purpose domain.VisitPurpose `json:"purpose"`
	Label   string              `json:"label,omitempty"`
	Count   int                 `json:"count"`
}

// Report is the full dashboard for one filter.
// Counts, rep stats and purposes cover the rep/date filtered visits; Rows is that set
// further narrowed by the free-text search.
type Report struct {
	Filter      Filter         `json:"filter"`
	TotalVisits int            `json:"totalVisits"`
	NewClients  int            `json:"newClients"`
	Reps        []RepStats     `json:"reps"`
	Purposes    []PurposeCount `json:"purposes"`
	Rows        []domain.Visit `json:"rows"`
}

// Build computes the report. It has no side effects.
func Build(visits []domain.Visit, users []domain.User, f Filter, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}

	filtered := lo.Filter(visits, func(v domain.Visit, _ int) bool {
		return (f.RepID == 0 || v.RepID == f.RepID) && inRange(v, f, loc)
	})

	reps := lo.Filter(users, func(u domain.User, _ int) bool {
		return u.Role == domain.RoleRep && (f.RepID == 0 || u.ID == f.RepID)
	})

	return Report{
		Filter:      f,
		TotalVisits: len(filtered),
		NewClients:  lo.CountBy(filtered, isNew),
		Reps: lo.Map(reps, func(rep domain.User, _ int) RepStats {
			own := lo.Filter(filtered, func(v domain.Visit, _ int) bool { return v.RepID == rep.ID })
			newCount := lo.CountBy(own, isNew)
			return RepStats{
				RepID: rep.ID,
				Name:  rep.Name,
				Total: len(own),
				New:   newCount,
				Old:   lo.CountBy(own, func(v domain.Visit) bool { return v.ClientType == domain.ClientOld }),
			}
		}),
		Purposes: purposeCounts(filtered),
		Rows:     search(filtered, f.Search),
	}
}

// Localized returns a copy of r with purpose labels filled from t
func (r Report) Localized(t i18n.Translator) Report {
	r.Purposes = lo.Map(r.Purposes, func(p PurposeCount, _ int) PurposeCount {
		p.Label = t(string(p.Purpose))
		return p
	})
	return r
}

func isNew(v domain.Visit) bool {
	return v.ClientType == domain.ClientNew
}

func inRange(v domain.Visit, f Filter, loc *time.Location) bool {
	if f.Start == "" && f.End == "" {
		return true
	}
	day, err := v.Date(loc)
	if err != nil {
		return false
	}
	if f.Start != "" {
		start, err := time.ParseInLocation(domain.DateLayout, f.Start, loc)
		if err == nil && day.Before(start) {
			return false
		}
	}
	if f.End != "" {
		end, err := time.ParseInLocation(domain.DateLayout, f.End, loc)
		if err == nil && day.After(end.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
			return false
		}
	}
	return true
}

func purposeCounts(visits []domain.Visit) []PurposeCount {
	counts := lo.CountValues(lo.FlatMap(visits, func(v domain.Visit, _ int) []domain.VisitPurpose {
		return v.VisitPurposes
	}))
	out := make([]PurposeCount, 0, len(counts))
	for _, p := range domain.VisitPurposes {
		if n := counts[p]; n > 0 {
			out = append(out, PurposeCount{Purpose: p, Count: n})
		}
	}
	return out
}

func search(visits []domain.Visit, term string) []domain.Visit {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return visits
	}
	return lo.Filter(visits, func(v domain.Visit, _ int) bool {
		return lo.SomeBy([]string{v.ClientName, v.RepName, v.EmployeeName, v.Notes}, func(field string) bool {
			return strings.Contains(strings.ToLower(field), term)
		})
	})
}
