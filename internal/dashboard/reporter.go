package dashboard

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/pkg/cache"
)

// Roster supplies the visits and users a report is built from.
// Version must change whenever either roster does.
type Roster interface {
	Version() uint64
	Snapshot() ([]domain.Visit, []domain.User, uint64)
}

// Reporter memoises reports per filter and roster version
type Reporter struct {
	roster Roster
	loc    *time.Location
	cache  *cache.Cache[Report]
	logger *slog.Logger

	mu     sync.Mutex
	latest uint64
}

// NewReporter creates a reporter over roster. Reports are kept for ttl.
func NewReporter(roster Roster, loc *time.Location, ttl time.Duration, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{
		roster: roster,
		loc:    loc,
		cache:  cache.New[Report](ttl),
		logger: logger,
	}
}

// Location returns the time zone date bounds are resolved in
func (r *Reporter) Location() *time.Location {
	return r.loc
}

// Report returns the report for f against the current roster, building it on a cache miss
func (r *Reporter) Report(f Filter) Report {
	version := r.roster.Version()
	r.forgetBefore(version)
	if cached, ok := r.cache.Get(reportKey(version, f)); ok {
		return cached
	}

	visits, users, built := r.roster.Snapshot()
	report := Build(visits, users, f, r.loc)
	r.cache.Set(reportKey(built, f), report)
	return report
}

// forgetBefore drops reports of older roster versions once a newer one is seen
func (r *Reporter) forgetBefore(version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version <= r.latest {
		return
	}
	r.cache.Clear()
	r.latest = version
	r.logger.Debug("dashboard cache moved to new roster", slog.Uint64("version", version))
}

func reportKey(version uint64, f Filter) string {
	return "v" + strconv.FormatUint(version, 10) + "|" + f.Key()
}
