package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/app/repositories/memory"
)

// tickClock advances one second per reading so orderings are deterministic
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *Services
	clock *tickClock
}

func newFixture(t *testing.T, requireConnection bool) *fixture {
	t.Helper()
	return newFixtureOn(t, memory.NewStore(), requireConnection)
}

func newFixtureOn(t *testing.T, store *memory.Store, requireConnection bool) *fixture {
	t.Helper()
	clock := &tickClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc:   NewServices(store, Options{RequireConnection: requireConnection, Clock: clock}, zerolog.Nop()),
		clock: clock,
	}
}

func floatPtr(v float64) *float64 { return &v }

func (f *fixture) addStudent(t *testing.T, name string, need *float64) Actor {
	t.Helper()
	s := &models.Student{
		ID:                    uuid.New(),
		DisplayName:           name,
		Email:                 name + "@example.edu",
		FinancialNeed:         need,
		FinancialNeedBaseline: need,
		CreatedAt:             f.clock.Now(),
	}
	if err := f.store.Principals().CreateStudent(f.ctx, s); err != nil {
		t.Fatal(err)
	}
	return Actor{ID: s.ID, Kind: models.KindStudent}
}

func (f *fixture) addAlumni(t *testing.T, name string) Actor {
	t.Helper()
	company := "Acme"
	a := &models.Alumni{ID: uuid.New(), DisplayName: name, Email: name + "@example.com", Company: &company, CreatedAt: f.clock.Now()}
	if err := f.store.Principals().CreateAlumni(f.ctx, a); err != nil {
		t.Fatal(err)
	}
	return Actor{ID: a.ID, Kind: models.KindAlumni}
}

func (f *fixture) connect(t *testing.T, from, to Actor) {
	t.Helper()
	req, err := f.svc.Connections.SendRequest(f.ctx, from, to.ID, to.Kind, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Connections.Accept(f.ctx, req.ID, to.ID); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) need(t *testing.T, student Actor) *float64 {
	t.Helper()
	s, err := f.store.Principals().GetStudent(f.ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	return s.FinancialNeed
}

func (f *fixture) notificationsFor(t *testing.T, recipient uuid.UUID) []models.Notification {
	t.Helper()
	items, _, err := f.store.Notifications().List(f.ctx, recipient, models.NotificationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return items
}

// requireErr fails unless err matches both the specific sentinel and its kind
func requireErr(t *testing.T, err, want, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if want != nil && !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if kind != nil && !errors.Is(err, kind) {
		t.Fatalf("expected kind %v, got %v", kind, err)
	}
}

// failingNotifications simulates a broken notification sink
type failingNotifications struct {
	repositories.NotificationRepository
}

var errSinkDown = errors.New("notification sink down")

func (failingNotifications) Create(context.Context, *models.Notification) error {
	return errSinkDown
}

type brokenSinkStore struct {
	repositories.Store
}

func (s *brokenSinkStore) Notifications() repositories.NotificationRepository {
	return failingNotifications{s.Store.Notifications()}
}

func (s *brokenSinkStore) WithinTx(ctx context.Context, fn repositories.TxFn) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		return fn(ctx, &brokenSinkStore{Store: tx})
	})
}
