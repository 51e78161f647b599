package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingBackend struct {
	*MemoryBackend
	setErr error
	getErr error
	sets   int
}

func newFailingBackend() *failingBackend {
	return &failingBackend{MemoryBackend: NewMemoryBackend()}
}

func (f *failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *failingBackend) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestLoadMissingKeyWritesDefault(t *testing.T) {
	backend := NewMemoryBackend()
	a := NewAdapter(backend, quietLogger())
	ctx := context.Background()

	def := []domain.User{{ID: 1, Username: "admin", Name: "Admin", Role: domain.RoleAdmin, Password: "pw"}}
	got := Load(ctx, a, UsersKey, def)
	assert.Equal(t, def, got)

	raw, err := backend.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"username":"admin","name":"Admin","role":"admin","password":"pw"}]`, string(raw))
}

func TestLoadCorruptValueReturnsDefaultWithoutRewrite(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, VisitsKey, []byte("{not json")))

	a := NewAdapter(backend, quietLogger())
	got := Load(ctx, a, VisitsKey, []domain.Visit{})
	assert.Empty(t, got)

	raw, err := backend.Get(ctx, VisitsKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestLoadReadErrorReturnsDefault(t *testing.T) {
	backend := newFailingBackend()
	backend.getErr = errors.New("connection reset")
	a := NewAdapter(backend, quietLogger())

	got := Load(context.Background(), a, UsersKey, []domain.User{{ID: 7}})
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Zero(t, backend.sets, "a read failure must not overwrite stored data")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(), quietLogger())
	ctx := context.Background()

	visits := []domain.Visit{
		{
			ID:             "01HQ",
			RepID:          2,
			RepName:        "Alice",
			VisitDate:      "2024-01-05",
			ClientName:     "Acme Corp",
			EmployeeName:   "Bob",
			EmployeePhone:  "555-0100",
			CompanyEmail:   "info@acme.test",
			ClientLocation: &domain.Coordinates{Latitude: 24.7136, Longitude: 46.6753},
			ClientType:     domain.ClientNew,
			VisitPurposes:  []domain.VisitPurpose{domain.PurposeOpenAccount, domain.PurposeDelivery},
			Notes:          "first contact",
		},
		{
			ID:            "01HR",
			RepID:         2,
			RepName:       "Alice",
			VisitDate:     "2024-01-10",
			ClientName:    "Acme Corp",
			ClientType:    domain.ClientOld,
			VisitPurposes: []domain.VisitPurpose{domain.PurposeFollowUp},
		},
	}
	a.Save(ctx, VisitsKey, visits)

	got := Load(ctx, a, VisitsKey, []domain.Visit{})
	assert.Equal(t, visits, got)
}

func TestSaveSwallowsBackendErrors(t *testing.T) {
	backend := newFailingBackend()
	backend.setErr = errors.New("quota exceeded")
	a := NewAdapter(backend, quietLogger())

	assert.NotPanics(t, func() {
		a.Save(context.Background(), UsersKey, []domain.User{{ID: 1}})
	})
	assert.Equal(t, 1, backend.sets)
}

func TestSaveSwallowsEncodeErrors(t *testing.T) {
	backend := newFailingBackend()
	a := NewAdapter(backend, quietLogger())

	a.Save(context.Background(), "broken", map[string]any{"ch": make(chan int)})
	assert.Zero(t, backend.sets)
}
