package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/dashboard"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/persistence"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, users []domain.User, visits []domain.Visit) (*Store, *persistence.MemoryBackend) {
	t.Helper()
	backend := persistence.NewMemoryBackend()
	adapter := persistence.NewAdapter(backend, quietLogger())
	ctx := context.Background()
	if users != nil {
		adapter.Save(ctx, persistence.UsersKey, users)
	}
	if visits != nil {
		adapter.Save(ctx, persistence.VisitsKey, visits)
	}
	return NewStore(ctx, adapter, i18n.English, quietLogger()), backend
}

func stored[T any](t *testing.T, backend *persistence.MemoryBackend, key string) T {
	t.Helper()
	raw, err := backend.Get(context.Background(), key)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func strPtr(s string) *string { return &s }

func aliceRoster() []domain.User {
	return []domain.User{
		{ID: 1, Username: "alice", Name: "Alice", Role: domain.RoleRep, Password: "secret"},
		{ID: 2, Username: "boss", Name: "Boss", Role: domain.RoleAdmin, Password: "admin"},
	}
}

func acmeForm(date string, hint domain.ClientType, loc *domain.Coordinates) VisitForm {
	return VisitForm{
		VisitDate:     date,
		ClientName:    "Acme Corp",
		EmployeeName:  "Wile E.",
		EmployeePhone: "555-0100",
		CompanyEmail:  "orders@acme.example",
		ClientType:    hint,
		VisitPurposes: []domain.VisitPurpose{domain.PurposeDelivery},
		Location:      loc,
	}
}

func TestNewStoreSeedsFirstRun(t *testing.T) {
	s, backend := newTestStore(t, nil, nil)

	assert.Equal(t, SeedUsers(), s.Users())
	assert.Equal(t, SeedVisits(), s.Visits())
	assert.Equal(t, SeedUsers(), stored[[]domain.User](t, backend, persistence.UsersKey))
	assert.Len(t, stored[[]domain.Visit](t, backend, persistence.VisitsKey), len(SeedVisits()))
}

func TestLogin(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})

	user, ok := s.Login("alice", "secret")
	require.True(t, ok)
	assert.Equal(t, int64(1), user.ID)

	current, _, ok := s.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, "alice", current.Username)

	// wrong password keeps the prior session
	_, ok = s.Login("boss", "adminx")
	assert.False(t, ok)
	current, _, ok = s.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, int64(1), current.ID)

	_, ok = s.Login("Alice", "secret")
	assert.False(t, ok, "usernames are case-sensitive")
}

func TestEachLoginStartsNewSession(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})

	_, ok := s.Login("alice", "secret")
	require.True(t, ok)
	_, first, _ := s.CurrentSession()
	require.NotEmpty(t, first)

	s.Logout()
	_, ok = s.Login("alice", "secret")
	require.True(t, ok)
	_, second, _ := s.CurrentSession()

	_, ok = s.Login("alice", "secret")
	require.True(t, ok)
	_, third, _ := s.CurrentSession()

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)
}

func TestVersionTracksRosterMutations(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	v := s.Version()
	s.AddVisit(ctx, domain.Visit{RepID: 1, ClientName: "Acme", EmployeeName: "Wile", VisitDate: "2024-03-01",
		VisitPurposes: []domain.VisitPurpose{domain.PurposeDelivery}})
	assert.Greater(t, s.Version(), v)

	v = s.Version()
	added, err := s.AddUser(ctx, domain.User{Username: "carol", Role: domain.RoleRep, Password: "pw"})
	require.NoError(t, err)
	assert.Greater(t, s.Version(), v)

	v = s.Version()
	name := "Carol"
	_, err = s.UpdateUser(ctx, added.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Greater(t, s.Version(), v)

	v = s.Version()
	require.NoError(t, s.RemoveUser(ctx, added.ID))
	assert.Greater(t, s.Version(), v)

	v = s.Version()
	require.NoError(t, s.SetLanguage("ar"))
	assert.Equal(t, v, s.Version())

	visits, users, version := s.Snapshot()
	assert.Len(t, visits, 1)
	assert.Len(t, users, len(aliceRoster()))
	assert.Equal(t, s.Version(), version)
}

func TestLoginRejectsEmptyPassword(t *testing.T) {
	s, _ := newTestStore(t, []domain.User{{ID: 7, Username: "ghost", Role: domain.RoleRep}}, []domain.Visit{})

	_, ok := s.Login("ghost", "")
	assert.False(t, ok)
	_, _, signedIn := s.CurrentSession()
	assert.False(t, signedIn)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	_, ok := s.Login("alice", "secret")
	require.True(t, ok)

	s.Logout()
	s.Logout()
	_, _, signedIn := s.CurrentSession()
	assert.False(t, signedIn)
}

func TestExpireSession(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	assert.False(t, s.ExpireSession(time.Hour), "no session to expire")

	_, ok := s.Login("alice", "secret")
	require.True(t, ok)

	clock = clock.Add(59 * time.Minute)
	assert.False(t, s.ExpireSession(time.Hour))
	_, _, signedIn := s.CurrentSession()
	assert.True(t, signedIn)

	clock = clock.Add(time.Minute)
	assert.True(t, s.ExpireSession(time.Hour))
	_, _, signedIn = s.CurrentSession()
	assert.False(t, signedIn)
}

func TestAddVisitPrependsAndPersists(t *testing.T) {
	s, backend := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	first := s.AddVisit(ctx, domain.Visit{ClientName: "One", VisitDate: "2024-01-01"})
	second := s.AddVisit(ctx, domain.Visit{ClientName: "Two", VisitDate: "2024-01-02"})

	require.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	visits := s.Visits()
	require.Len(t, visits, 2)
	assert.Equal(t, second.ID, visits[0].ID)
	assert.Equal(t, visits, stored[[]domain.Visit](t, backend, persistence.VisitsKey))
}

func TestVisitIDsUniqueUnderRapidCreation(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	frozen := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v := s.AddVisit(context.Background(), domain.Visit{ClientName: "x"})
		require.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true
	}
}

func TestAddUserAssignsMonotonicIDs(t *testing.T) {
	s, backend := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	a, err := s.AddUser(ctx, domain.User{ID: 99, Username: "carol", Name: "Carol", Role: domain.RoleRep, Password: "p"})
	require.NoError(t, err)
	b, err := s.AddUser(ctx, domain.User{Username: "dave", Name: "Dave", Role: domain.RoleRep, Password: "p"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), a.ID, "caller-supplied ids are ignored")
	assert.Equal(t, int64(4), b.ID)

	users := s.Users()
	assert.Equal(t, "dave", users[len(users)-1].Username)
	assert.Equal(t, users, stored[[]domain.User](t, backend, persistence.UsersKey))
}

func TestAddUserRejectsDuplicateAndInvalid(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	_, err := s.AddUser(ctx, domain.User{Username: "alice", Role: domain.RoleRep})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.AddUser(ctx, domain.User{Username: "  ", Role: domain.RoleRep})
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = s.AddUser(ctx, domain.User{Username: "eve", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidUser)

	assert.Len(t, s.Users(), 2)
}

func TestUpdateUserPasswordRules(t *testing.T) {
	s, backend := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	updated, err := s.UpdateUser(ctx, 1, domain.UserPatch{Password: strPtr("")})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "secret", updated.Password)

	updated, err = s.UpdateUser(ctx, 1, domain.UserPatch{Password: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, "x", updated.Password)

	users := stored[[]domain.User](t, backend, persistence.UsersKey)
	assert.Equal(t, "x", users[0].Password)
}

func TestUpdateUserMergesFields(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	role := domain.RoleAdmin

	updated, err := s.UpdateUser(context.Background(), 1, domain.UserPatch{Name: strPtr("Alice B."), Role: &role})
	require.NoError(t, err)

	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "secret", updated.Password)
}

func TestUpdateUserUnknownIDIsSilent(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})

	updated, err := s.UpdateUser(context.Background(), 404, domain.UserPatch{Name: strPtr("nobody")})
	assert.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, aliceRoster(), s.Users())
}

func TestUpdateUserRejectsTakenUsername(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()

	_, err := s.UpdateUser(ctx, 1, domain.UserPatch{Username: strPtr("boss")})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// keeping one's own username is fine
	_, err = s.UpdateUser(ctx, 1, domain.UserPatch{Username: strPtr("alice")})
	assert.NoError(t, err)
}

func TestRemoveUserCascades(t *testing.T) {
	s, backend := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()
	alice, _ := s.User(1)
	boss, _ := s.User(2)

	_, err := s.RecordVisit(ctx, alice, acmeForm("2024-01-05", domain.ClientNew, nil))
	require.NoError(t, err)
	_, err = s.RecordVisit(ctx, boss, acmeForm("2024-01-06", domain.ClientNew, nil))
	require.NoError(t, err)

	require.NoError(t, s.RemoveUser(ctx, 1))

	_, found := s.User(1)
	assert.False(t, found)
	for _, v := range s.Visits() {
		assert.NotEqual(t, int64(1), v.RepID)
	}
	assert.Len(t, s.Visits(), 1)
	assert.Len(t, stored[[]domain.User](t, backend, persistence.UsersKey), 1)
	assert.Len(t, stored[[]domain.Visit](t, backend, persistence.VisitsKey), 1)
}

func TestRemoveSignedInUserIsRejected(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	_, ok := s.Login("boss", "admin")
	require.True(t, ok)

	err := s.RemoveUser(context.Background(), 2)
	assert.ErrorIs(t, err, ErrSelfDeletion)
	assert.Equal(t, aliceRoster(), s.Users())
}

func TestRecordVisitClassification(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	ctx := context.Background()
	alice, _ := s.User(1)
	here := &domain.Coordinates{Latitude: 24.7, Longitude: 46.7}

	first, err := s.RecordVisit(ctx, alice, acmeForm("2024-01-05", domain.ClientOld, here))
	require.NoError(t, err)
	assert.Equal(t, domain.ClientNew, first.ClientType)
	assert.Equal(t, here, first.ClientLocation)
	assert.Equal(t, "Alice", first.RepName)
	assert.Equal(t, int64(1), first.RepID)

	second, err := s.RecordVisit(ctx, alice, acmeForm("2024-01-10", domain.ClientNew, here))
	require.NoError(t, err)
	assert.Equal(t, domain.ClientOld, second.ClientType)
	assert.Nil(t, second.ClientLocation)

	assert.Equal(t, domain.ClientOld, s.ClassifyClient("Acme Corp"))
	assert.Equal(t, domain.ClientNew, s.ClassifyClient("Globex"))
}

func TestRecordVisitValidation(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	alice, _ := s.User(1)

	tests := []struct {
		name   string
		mutate func(*VisitForm)
	}{
		{"missing client", func(f *VisitForm) { f.ClientName = " " }},
		{"missing employee", func(f *VisitForm) { f.EmployeeName = "" }},
		{"no purposes", func(f *VisitForm) { f.VisitPurposes = nil }},
		{"unknown purpose", func(f *VisitForm) { f.VisitPurposes = []domain.VisitPurpose{"coffee"} }},
		{"bad date", func(f *VisitForm) { f.VisitDate = "05/01/2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := acmeForm("2024-01-05", domain.ClientNew, nil)
			tt.mutate(&form)
			_, err := s.RecordVisit(context.Background(), alice, form)
			assert.ErrorIs(t, err, ErrInvalidVisit)
		})
	}
	assert.Empty(t, s.Visits())
}

func TestRecordVisitDefaultsDateToToday(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	s.now = func() time.Time { return time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC) }
	alice, _ := s.User(1)

	v, err := s.RecordVisit(context.Background(), alice, acmeForm("", domain.ClientNew, nil))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", v.VisitDate)
}

func TestAcmeScenario(t *testing.T) {
	s, _ := newTestStore(t, []domain.User{{ID: 1, Username: "alice", Name: "Alice", Role: domain.RoleRep, Password: "pw"}}, []domain.Visit{})
	ctx := context.Background()
	alice, _ := s.User(1)

	_, err := s.RecordVisit(ctx, alice, acmeForm("2024-01-05", domain.ClientNew, nil))
	require.NoError(t, err)
	second, err := s.RecordVisit(ctx, alice, acmeForm("2024-01-10", domain.ClientNew, nil))
	require.NoError(t, err)
	assert.Equal(t, domain.ClientOld, second.ClientType)

	report := dashboard.Build(s.Visits(), s.Users(), dashboard.Filter{Start: "2024-01-01", End: "2024-01-31"}, time.UTC)
	assert.Equal(t, 2, report.TotalVisits)
	assert.Equal(t, 1, report.NewClients)
}

func TestClientDirectoryUsesLatestVisit(t *testing.T) {
	visits := []domain.Visit{
		{ID: "b", ClientName: "Acme Corp", VisitDate: "2024-01-03", EmployeeName: "Old Contact"},
		{ID: "c", ClientName: "Globex", VisitDate: "2024-01-02", EmployeeName: "Hank"},
		{ID: "a", ClientName: "Acme Corp", VisitDate: "2024-02-01", EmployeeName: "New Contact"},
	}
	s, _ := newTestStore(t, aliceRoster(), visits)

	dir := s.ClientDirectory()
	require.Len(t, dir, 2)
	assert.Equal(t, "Acme Corp", dir[0].ClientName)
	assert.Equal(t, "New Contact", dir[0].EmployeeName)
	assert.Equal(t, "2024-02-01", dir[0].LastVisitDate)
	assert.Equal(t, "Globex", dir[1].ClientName)
}

func TestLanguage(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})

	assert.Equal(t, "Login", s.T("login"))
	assert.Equal(t, "ltr", s.Direction())

	require.NoError(t, s.SetLanguage("ar"))
	assert.Equal(t, i18n.Arabic, s.Language())
	assert.Equal(t, "rtl", s.Direction())
	assert.Equal(t, i18n.Lookup(i18n.Arabic, "login"), s.T("login"))
	assert.Equal(t, "missing_key", s.T("missing_key"))

	assert.ErrorIs(t, s.SetLanguage("fr"), ErrUnsupportedLanguage)
	assert.Equal(t, i18n.Arabic, s.Language())
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s, _ := newTestStore(t, aliceRoster(), []domain.Visit{})
	events, cancel := s.Subscribe()
	defer cancel()

	_, ok := s.Login("alice", "secret")
	require.True(t, ok)
	s.AddVisit(context.Background(), domain.Visit{ClientName: "x"})

	assert.Equal(t, EventSession, (<-events).Kind)
	assert.Equal(t, EventVisits, (<-events).Kind)

	cancel()
	_, open := <-events
	assert.False(t, open)
	cancel()
}

func TestStoreSurvivesPersistenceReload(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	adapter := persistence.NewAdapter(backend, quietLogger())
	ctx := context.Background()

	first := NewStore(ctx, adapter, i18n.English, quietLogger())
	added, err := first.AddUser(ctx, domain.User{Username: "zed", Name: "Zed", Role: domain.RoleRep, Password: "z"})
	require.NoError(t, err)

	second := NewStore(ctx, adapter, i18n.English, quietLogger())
	got, ok := second.User(added.ID)
	require.True(t, ok)
	assert.Equal(t, added, got)

	next, err := second.AddUser(ctx, domain.User{Username: "yan", Role: domain.RoleRep})
	require.NoError(t, err)
	assert.Equal(t, added.ID+1, next.ID)
}
