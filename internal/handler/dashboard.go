package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/dashboard"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the admin report
type DashboardHandler struct {
	reporter *dashboard.Reporter
	store    *service.Store
	logger   *slog.Logger
}

func NewDashboardHandler(reporter *dashboard.Reporter, store *service.Store, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{reporter: reporter, store: store, logger: logger}
}

// Get handles GET /api/dashboard?repId=&start=&end=&q=
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	report := h.reporter.Report(filter)
	writeJSON(w, http.StatusOK, report.Localized(i18n.For(h.store.Language())))
}

// Export handles GET /api/dashboard/export with the same query as Get.
// The spreadsheet holds the searched rows.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	report := h.reporter.Report(filter)

	// buffer so a failed render can still answer with an error status
	var buf bytes.Buffer
	if err := dashboard.WriteXLSX(&buf, report.Rows, h.store.Language()); err != nil {
		h.logger.Error("failed to render export",
			slog.Int("rows", len(report.Rows)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "export_failed", "failed to render export")
		return
	}

	filename := fmt.Sprintf("visits-%s.xlsx", time.Now().In(h.reporter.Location()).Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func parseFilter(r *http.Request) (dashboard.Filter, error) {
	q := r.URL.Query()
	f := dashboard.Filter{
		Start:  strings.TrimSpace(q.Get("start")),
		End:    strings.TrimSpace(q.Get("end")),
		Search: strings.TrimSpace(q.Get("q")),
	}
	// "all" mirrors the rep selector's catch-all option
	if raw := strings.TrimSpace(q.Get("repId")); raw != "" && raw != "all" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return dashboard.Filter{}, fmt.Errorf("invalid repId %q", raw)
		}
		f.RepID = id
	}
	if err := f.Validate(); err != nil {
		return dashboard.Filter{}, err
	}
	return f, nil
}
