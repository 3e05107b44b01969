package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarlink/internal/db"
)

// psql is the statement builder shared by all Postgres repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresStore implements Store on top of a pgx pool
type PostgresStore struct {
	pg   *db.PostgresDB
	q    DBTX
	inTx bool
}

// NewPostgresStore creates a new store bound to the pool
func NewPostgresStore(pg *db.PostgresDB) *PostgresStore {
	return &PostgresStore{pg: pg, q: pg.Pool}
}

func (s *PostgresStore) Principals() PrincipalRepository {
	return NewPrincipalRepository(s.q)
}

func (s *PostgresStore) Connections() ConnectionRepository {
	return NewConnectionRepository(s.q)
}

func (s *PostgresStore) Conversations() ConversationRepository {
	return NewConversationRepository(s.q)
}

func (s *PostgresStore) Messages() MessageRepository {
	return NewMessageRepository(s.q)
}

func (s *PostgresStore) Payments() PaymentRepository {
	return NewPaymentRepository(s.q)
}

func (s *PostgresStore) Notifications() NotificationRepository {
	return NewNotificationRepository(s.q)
}

// WithinTx runs fn inside a database transaction
func (s *PostgresStore) WithinTx(ctx context.Context, fn TxFn) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &PostgresStore{pg: s.pg, q: tx, inTx: true})
	})
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
