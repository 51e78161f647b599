package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
)

// VisitForm is a data-entry submission.
// ClientType is only the submitter's hint; the stored classification is derived from history.
type VisitForm struct {
	VisitDate     string
	ClientName    string
	EmployeeName  string
	EmployeePhone string
	CompanyEmail  string
	ClientType    domain.ClientType
	VisitPurposes []domain.VisitPurpose
	Notes         string
	Location      *domain.Coordinates
}

// ClientContact is the most recent contact data known for a client
type ClientContact struct {
	ClientName    string `json:"clientName"`
	EmployeeName  string `json:"employeeName"`
	EmployeePhone string `json:"employeePhone"`
	CompanyEmail  string `json:"companyEmail"`
	LastVisitDate string `json:"lastVisitDate"`
}

// RecordVisit validates form, classifies the client and stores the visit for rep.
// A client with any earlier visit is always "old"; the location is kept only for new clients.
func (s *Store) RecordVisit(ctx context.Context, rep domain.User, form VisitForm) (domain.Visit, error) {
	visit, err := s.visitFromForm(form)
	if err != nil {
		return domain.Visit{}, err
	}
	visit.RepID = rep.ID
	visit.RepName = rep.Name

	s.mu.Lock()
	visit.ClientType = s.classifyLocked(visit.ClientName)
	if visit.ClientType == domain.ClientNew {
		visit.ClientLocation = form.Location
	}
	visit = s.addVisitLocked(ctx, visit)
	s.mu.Unlock()

	metrics.ObserveVisit(string(visit.ClientType))
	s.logger.Info("visit recorded",
		slog.String("visit_id", visit.ID),
		slog.Int64("rep_id", rep.ID),
		slog.String("client_type", string(visit.ClientType)),
		slog.Bool("located", visit.ClientLocation != nil),
	)
	if form.ClientType != "" && form.ClientType != visit.ClientType {
		s.logger.Debug("submitted client type overridden",
			slog.String("submitted", string(form.ClientType)),
			slog.String("stored", string(visit.ClientType)),
		)
	}
	s.notify(EventVisits)
	return visit, nil
}

func (s *Store) visitFromForm(form VisitForm) (domain.Visit, error) {
	v := domain.Visit{
		VisitDate:     strings.TrimSpace(form.VisitDate),
		ClientName:    strings.TrimSpace(form.ClientName),
		EmployeeName:  strings.TrimSpace(form.EmployeeName),
		EmployeePhone: strings.TrimSpace(form.EmployeePhone),
		CompanyEmail:  strings.TrimSpace(form.CompanyEmail),
		VisitPurposes: lo.Uniq(form.VisitPurposes),
		Notes:         form.Notes,
	}

	if v.VisitDate == "" {
		v.VisitDate = s.now().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, v.VisitDate); err != nil {
		return domain.Visit{}, fmt.Errorf("%w: visit date %q is not YYYY-MM-DD", ErrInvalidVisit, v.VisitDate)
	}
	if v.ClientName == "" {
		return domain.Visit{}, fmt.Errorf("%w: client name is required", ErrInvalidVisit)
	}
	if v.EmployeeName == "" {
		return domain.Visit{}, fmt.Errorf("%w: employee name is required", ErrInvalidVisit)
	}
	if len(v.VisitPurposes) == 0 {
		return domain.Visit{}, fmt.Errorf("%w: at least one purpose is required", ErrInvalidVisit)
	}
	if bad, found := lo.Find(v.VisitPurposes, func(p domain.VisitPurpose) bool { return !p.Valid() }); found {
		return domain.Visit{}, fmt.Errorf("%w: unknown purpose %q", ErrInvalidVisit, bad)
	}
	return v, nil
}

// ClassifyClient reports whether name has been visited before
func (s *Store) ClassifyClient(name string) domain.ClientType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifyLocked(strings.TrimSpace(name))
}

func (s *Store) classifyLocked(name string) domain.ClientType {
	if lo.ContainsBy(s.visits, func(v domain.Visit) bool { return v.ClientName == name }) {
		return domain.ClientOld
	}
	return domain.ClientNew
}

// ClientDirectory returns the latest-dated contact data per client, sorted by client name
func (s *Store) ClientDirectory() []ClientContact {
	s.mu.RLock()
	latest := make(map[string]domain.Visit)
	for _, v := range s.visits {
		if prev, ok := latest[v.ClientName]; !ok || v.VisitDate > prev.VisitDate {
			latest[v.ClientName] = v
		}
	}
	s.mu.RUnlock()

	out := lo.MapToSlice(latest, func(name string, v domain.Visit) ClientContact {
		return ClientContact{
			ClientName:    name,
			EmployeeName:  v.EmployeeName,
			EmployeePhone: v.EmployeePhone,
			CompanyEmail:  v.CompanyEmail,
			LastVisitDate: v.VisitDate,
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out
}
