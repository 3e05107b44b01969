package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/scholarlink/internal/app/models"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so every repository can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFn is a unit of work executed against a transactional view of the store
type TxFn func(ctx context.Context, tx Store) error

// Store groups the repositories of the system. Methods called on the Store passed
// to a TxFn observe and commit together.
type Store interface {
	Principals() PrincipalRepository
	Connections() ConnectionRepository
	Conversations() ConversationRepository
	Messages() MessageRepository
	Payments() PaymentRepository
	Notifications() NotificationRepository

	// WithinTx runs fn all-or-nothing. Nested calls join the outer unit.
	WithinTx(ctx context.Context, fn TxFn) error
}

// PrincipalRepository reads and bookkeeps student and alumni profiles
type PrincipalRepository interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetAlumni(ctx context.Context, id uuid.UUID) (*models.Alumni, error)
	GetStudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error)
	GetAlumniByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Alumni, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	CreateAlumni(ctx context.Context, a *models.Alumni) error
	CountPrincipals(ctx context.Context) (int64, error)

	// SetUPIIDIfEmpty stores upiID only when the student has none. It reports whether it wrote.
	SetUPIIDIfEmpty(ctx context.Context, studentID uuid.UUID, upiID string, at time.Time) (bool, error)
	// DecrementFinancialNeed applies max(0, need - amount) when the current need is
	// present and non-zero, so a negative need ends at zero. A nil result means the
	// need was left untouched.
	DecrementFinancialNeed(ctx context.Context, studentID uuid.UUID, amount float64, at time.Time) (*float64, error)
	// ListStudentsWithBaseline returns students that declared a financial need baseline
	ListStudentsWithBaseline(ctx context.Context) ([]models.Student, error)
	SetFinancialNeed(ctx context.Context, studentID uuid.UUID, need float64, at time.Time) error
}

// ConnectionRepository persists connection requests
type ConnectionRepository interface {
	// Create fails with apperrors.ErrActivePairExists when the pair already has a
	// pending or accepted request.
	Create(ctx context.Context, req *models.ConnectionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ConnectionRequest, error)
	// FindLatestBetween returns the newest request of the unordered pair, or nil.
	FindLatestBetween(ctx context.Context, a, b uuid.UUID) (*models.ConnectionRequest, error)
	// UpdateStatus moves the request from one status to another. It fails with
	// apperrors.ErrTransitionConflict when the stored status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ConnectionStatus, at time.Time) (*models.ConnectionRequest, error)
	ListReceived(ctx context.Context, receiverID uuid.UUID, status models.ConnectionStatus) ([]models.ConnectionRequest, error)
	ListSent(ctx context.Context, senderID uuid.UUID) ([]models.ConnectionRequest, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]models.ConnectionRequest, error)
}

// ConversationRepository persists conversations
type ConversationRepository interface {
	// GetOrCreate returns the conversation of the pair, inserting conv when none
	// exists. created reports whether conv was inserted.
	GetOrCreate(ctx context.Context, conv *models.Conversation) (result *models.Conversation, created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	SetLastMessage(ctx context.Context, id uuid.UUID, last *models.LastMessage, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MessageRepository persists messages
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	// MarkReadFor flips read on every unread message of the conversation that readerID did not send
	MarkReadFor(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	// Latest returns the most recent message of the conversation, or nil.
	Latest(ctx context.Context, conversationID uuid.UUID) (*models.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByConversation(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

// PaymentRepository persists payment requests
type PaymentRepository interface {
	Create(ctx context.Context, req *models.PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRequest, error)
	// Transition applies t only when the stored status equals t.From. It fails with
	// apperrors.ErrTransitionConflict otherwise.
	Transition(ctx context.Context, id uuid.UUID, t models.PaymentTransition) (*models.PaymentRequest, error)
	ListBySender(ctx context.Context, alumniID uuid.UUID) ([]models.PaymentRequest, error)
	ListByRecipient(ctx context.Context, studentID uuid.UUID) ([]models.PaymentRequest, error)
	CountBySender(ctx context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error)
	CountDistinctRecipients(ctx context.Context, alumniID uuid.UUID, status models.PaymentStatus) (int64, error)
	// SumCompletedByRecipient totals completed amounts per student
	SumCompletedByRecipient(ctx context.Context) (map[uuid.UUID]float64, error)
}

// NotificationRepository persists the notification outbox
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, filter models.NotificationFilter) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
