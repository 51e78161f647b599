package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/persistence"
)

// Store owns the session, the active language and both rosters.
// All mutations are serialised and each one that touches a roster writes the
// whole roster through the persistence adapter before returning.
type Store struct {
	mu         sync.RWMutex
	users      []domain.User
	visits     []domain.Visit
	sessionID  int64
	sessionKey string
	signedIn   bool
	signedInAt time.Time
	language   i18n.Language
	nextUserID int64
	version    uint64
	entropy    io.Reader
	now        func() time.Time

	persist *persistence.Adapter
	events  *broadcaster
	logger  *slog.Logger
}

// NewStore loads both rosters, seeding them on first run
func NewStore(ctx context.Context, persist *persistence.Adapter, lang i18n.Language, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := i18n.Parse(string(lang)); err != nil {
		lang = i18n.English
	}

	s := &Store{
		language: lang,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		now:      time.Now,
		persist:  persist,
		events:   newBroadcaster(),
		logger:   logger,
	}

	s.users = persistence.Load(ctx, persist, persistence.UsersKey, SeedUsers())
	s.visits = persistence.Load(ctx, persist, persistence.VisitsKey, SeedVisits())
	s.nextUserID = lo.Reduce(s.users, func(highest int64, u domain.User, _ int) int64 {
		if u.ID > highest {
			return u.ID
		}
		return highest
	}, 0)
	metrics.SetRosterSizes(len(s.users), len(s.visits))

	logger.Info("store loaded",
		slog.Int("users", len(s.users)),
		slog.Int("visits", len(s.visits)),
		slog.String("language", string(lang)),
	)
	return s
}

// Subscribe registers for change notifications. The returned func unsubscribes.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

func (s *Store) notify(kind EventKind) {
	s.events.publish(Event{Kind: kind, At: s.now()})
}

// Login establishes the session for the user whose username and password match exactly.
// On failure the existing session is left as it was.
func (s *Store) Login(username, password string) (*domain.User, bool) {
	s.mu.Lock()
	user, found := lo.Find(s.users, func(u domain.User) bool { return u.Username == username })
	if !found || user.Password == "" || user.Password != password {
		s.mu.Unlock()
		metrics.ObserveLogin("failure")
		s.logger.Info("login failed", slog.String("username", username))
		return nil, false
	}
	s.sessionID = user.ID
	s.signedIn = true
	s.signedInAt = s.now()
	s.sessionKey = ulid.MustNew(ulid.Timestamp(s.signedInAt), s.entropy).String()
	s.mu.Unlock()

	metrics.ObserveLogin("success")
	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	s.notify(EventSession)
	return &user, true
}

// Logout clears the session
func (s *Store) Logout() {
	s.mu.Lock()
	wasSignedIn := s.signedIn
	s.sessionID = 0
	s.sessionKey = ""
	s.signedIn = false
	s.mu.Unlock()

	if wasSignedIn {
		s.notify(EventSession)
	}
}

// ExpireSession ends the session once it is older than maxAge and reports whether it did
func (s *Store) ExpireSession(maxAge time.Duration) bool {
	s.mu.Lock()
	if !s.signedIn || s.now().Sub(s.signedInAt) < maxAge {
		s.mu.Unlock()
		return false
	}
	userID := s.sessionID
	s.sessionID = 0
	s.sessionKey = ""
	s.signedIn = false
	s.mu.Unlock()

	s.logger.Info("session expired", slog.Int64("user_id", userID))
	s.notify(EventSession)
	return true
}

// CurrentSession returns the signed-in user and the id of the login that started the session.
// Every login gets a fresh id, so the id changes even when the same user signs in again.
func (s *Store) CurrentSession() (*domain.User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.signedIn {
		return nil, "", false
	}
	user, ok := s.findUserLocked(s.sessionID)
	if !ok {
		return nil, "", false
	}
	return &user, s.sessionKey, true
}

// User returns the user with id
func (s *Store) User(id int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUserLocked(id)
}

// Users returns a copy of the user roster
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// Visits returns a copy of the visit roster, most recent first
func (s *Store) Visits() []domain.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Visit(nil), s.visits...)
}

// Version counts roster mutations. It changes before the mutating call returns.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns copies of both rosters together with the version they belong to
func (s *Store) Snapshot() ([]domain.Visit, []domain.User, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Visit(nil), s.visits...), append([]domain.User(nil), s.users...), s.version
}

// AddVisit assigns an id to visit and prepends it to the roster
func (s *Store) AddVisit(ctx context.Context, visit domain.Visit) domain.Visit {
	s.mu.Lock()
	visit = s.addVisitLocked(ctx, visit)
	s.mu.Unlock()

	s.notify(EventVisits)
	return visit
}

func (s *Store) addVisitLocked(ctx context.Context, visit domain.Visit) domain.Visit {
	visit.ID = ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
	s.visits = append([]domain.Visit{visit}, s.visits...)
	s.version++
	s.persist.Save(ctx, persistence.VisitsKey, s.visits)
	metrics.SetRosterSizes(len(s.users), len(s.visits))
	return visit
}

// AddUser assigns the next id to user and appends it to the roster
func (s *Store) AddUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if !user.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, user.Role)
	}

	s.mu.Lock()
	if s.usernameHeldLocked(user.Username, 0) {
		s.mu.Unlock()
		return domain.User{}, ErrUsernameTaken
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users = append(s.users, user)
	s.version++
	s.persist.Save(ctx, persistence.UsersKey, s.users)
	metrics.SetRosterSizes(len(s.users), len(s.visits))
	s.mu.Unlock()

	s.logger.Info("user added", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	s.notify(EventUsers)
	return user, nil
}

// UpdateUser merges patch into the user with id. An unknown id is a silent no-op
// returning a nil user.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()

	updated, idx, found := lo.FindIndexOf(s.users, func(u domain.User) bool { return u.ID == id })
	if !found {
		s.mu.Unlock()
		return nil, nil
	}

	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
		}
		if username != updated.Username && s.usernameHeldLocked(username, id) {
			s.mu.Unlock()
			return nil, ErrUsernameTaken
		}
		updated.Username = username
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, *patch.Role)
		}
		updated.Role = *patch.Role
	}
	if patch.Password != nil && *patch.Password != "" {
		updated.Password = *patch.Password
	}

	s.users[idx] = updated
	s.version++
	s.persist.Save(ctx, persistence.UsersKey, s.users)
	s.mu.Unlock()

	s.logger.Info("user updated", slog.Int64("user_id", id))
	s.notify(EventUsers)
	return &updated, nil
}

// RemoveUser deletes the user with id together with all of their visits.
// The signed-in user cannot remove themselves.
func (s *Store) RemoveUser(ctx context.Context, id int64) error {
	s.mu.Lock()

	if s.signedIn && s.sessionID == id {
		s.mu.Unlock()
		return ErrSelfDeletion
	}
	if _, ok := s.findUserLocked(id); !ok {
		s.mu.Unlock()
		return nil
	}

	s.users = lo.Reject(s.users, func(u domain.User, _ int) bool { return u.ID == id })
	before := len(s.visits)
	s.visits = lo.Reject(s.visits, func(v domain.Visit, _ int) bool { return v.RepID == id })
	removedVisits := before - len(s.visits)
	s.version++

	s.persist.Save(ctx, persistence.UsersKey, s.users)
	s.persist.Save(ctx, persistence.VisitsKey, s.visits)
	metrics.SetRosterSizes(len(s.users), len(s.visits))
	s.mu.Unlock()

	s.logger.Info("user removed",
		slog.Int64("user_id", id),
		slog.Int("visits_removed", removedVisits),
	)
	s.notify(EventUsers)
	s.notify(EventVisits)
	return nil
}

// SetLanguage switches the active locale
func (s *Store) SetLanguage(tag string) error {
	lang, err := i18n.Parse(tag)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}

	s.mu.Lock()
	changed := s.language != lang
	s.language = lang
	s.mu.Unlock()

	if changed {
		s.notify(EventLanguage)
	}
	return nil
}

// Language returns the active locale
func (s *Store) Language() i18n.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Direction returns the text direction of the active locale
func (s *Store) Direction() string {
	return i18n.Direction(s.Language())
}

// T looks key up in the active locale, falling back to the key itself
func (s *Store) T(key string) string {
	return i18n.Lookup(s.Language(), key)
}

func (s *Store) findUserLocked(id int64) (domain.User, bool) {
	return lo.Find(s.users, func(u domain.User) bool { return u.ID == id })
}

func (s *Store) usernameHeldLocked(username string, exceptID int64) bool {
	return lo.ContainsBy(s.users, func(u domain.User) bool {
		return u.Username == username && u.ID != exceptID
	})
}
