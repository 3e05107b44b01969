// Package memory is a process-local Store with the same semantics as the Postgres
// store. It backs the "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/repositories"
)

type state struct {
	students      map[uuid.UUID]models.Student
	alumni        map[uuid.UUID]models.Alumni
	connections   map[uuid.UUID]models.ConnectionRequest
	conversations map[uuid.UUID]models.Conversation
	messages      map[uuid.UUID]models.Message
	payments      map[uuid.UUID]models.PaymentRequest
	notifications map[uuid.UUID]models.Notification
	// seq records insertion order and breaks timestamp ties
	seq  map[uuid.UUID]uint64
	next uint64
}

func newState() *state {
	return &state{
		students:      map[uuid.UUID]models.Student{},
		alumni:        map[uuid.UUID]models.Alumni{},
		connections:   map[uuid.UUID]models.ConnectionRequest{},
		conversations: map[uuid.UUID]models.Conversation{},
		messages:      map[uuid.UUID]models.Message{},
		payments:      map[uuid.UUID]models.PaymentRequest{},
		notifications: map[uuid.UUID]models.Notification{},
		seq:           map[uuid.UUID]uint64{},
	}
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies the maps. Records are values and pointer fields are never mutated
// in place, so a shallow copy is a full snapshot.
func (s *state) clone() *state {
	return &state{
		students:      cloneMap(s.students),
		alumni:        cloneMap(s.alumni),
		connections:   cloneMap(s.connections),
		conversations: cloneMap(s.conversations),
		messages:      cloneMap(s.messages),
		payments:      cloneMap(s.payments),
		notifications: cloneMap(s.notifications),
		seq:           cloneMap(s.seq),
		next:          s.next,
	}
}

func (s *state) track(id uuid.UUID) {
	s.next++
	s.seq[id] = s.next
}

type shared struct {
	mu sync.Mutex
	st *state
}

// Store implements repositories.Store in memory
type Store struct {
	db   *shared
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{db: &shared{st: newState()}}
}

// view runs fn against the current state, holding the lock unless the caller is
// already inside WithinTx.
func (s *Store) view(fn func(st *state) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.st)
}

// WithinTx serialises fn against every other store call and restores the
// previous state if fn fails or panics.
func (s *Store) WithinTx(ctx context.Context, fn repositories.TxFn) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.st.clone()
	defer func() {
		if r := recover(); r != nil {
			s.db.st = snapshot
			panic(r)
		}
		if err != nil {
			s.db.st = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &Store{db: s.db, inTx: true})
}

func (s *Store) Principals() repositories.PrincipalRepository {
	return &principalRepo{s}
}

func (s *Store) Connections() repositories.ConnectionRepository {
	return &connectionRepo{s}
}

func (s *Store) Conversations() repositories.ConversationRepository {
	return &conversationRepo{s}
}

func (s *Store) Messages() repositories.MessageRepository {
	return &messageRepo{s}
}

func (s *Store) Payments() repositories.PaymentRepository {
	return &paymentRepo{s}
}

func (s *Store) Notifications() repositories.NotificationRepository {
	return &notificationRepo{s}
}

// newestFirst orders items by timestamp descending, then by insertion order descending
func newestFirst[T any](st *state, items []T, id func(T) uuid.UUID, cmp func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := cmp(items[i], items[j]); c != 0 {
			return c > 0
		}
		return st.seq[id(items[i])] > st.seq[id(items[j])]
	})
}

// oldestFirst is the reverse of newestFirst
func oldestFirst[T any](st *state, items []T, id func(T) uuid.UUID, cmp func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := cmp(items[i], items[j]); c != 0 {
			return c < 0
		}
		return st.seq[id(items[i])] < st.seq[id(items[j])]
	})
}

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return name(items[i]) < name(items[j]) })
}
