package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

func TestGetOrCreateRequiresAcceptedConnection(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	_, err := f.svc.Messages.GetOrCreateConversation(f.ctx, student, alumni.ID, alumni.Kind)
	requireErr(t, err, apperrors.ErrNotConnected, apperrors.ErrPermissionDenied)

	f.connect(t, student, alumni)

	first, err := f.svc.Messages.GetOrCreateConversation(f.ctx, student, alumni.ID, alumni.Kind)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Messages.GetOrCreateConversation(f.ctx, alumni, student.ID, student.Kind)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatal("a pair must share one conversation")
	}
	if first.LastMessage != nil {
		t.Fatal("new conversation must have no preview")
	}
}

func TestMessagingWithoutConnectionGuard(t *testing.T) {
	f := newFixture(t, false)
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")

	conv, err := f.svc.Messages.GetOrCreateConversation(f.ctx, student, alumni.ID, alumni.Kind)
	if err != nil {
		t.Fatalf("guard disabled, expected success: %v", err)
	}
	if _, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "hi"); err != nil {
		t.Fatal(err)
	}
}

func newConversation(t *testing.T, f *fixture) (Actor, Actor, *models.Conversation) {
	t.Helper()
	student := f.addStudent(t, "asha", nil)
	alumni := f.addAlumni(t, "ravi")
	f.connect(t, student, alumni)
	conv, err := f.svc.Messages.GetOrCreateConversation(f.ctx, student, alumni.ID, alumni.Kind)
	if err != nil {
		t.Fatal(err)
	}
	return student, alumni, conv
}

func TestListMessagesMarksCounterpartMessagesRead(t *testing.T) {
	f := newFixture(t, true)
	student, alumni, conv := newConversation(t, f)

	if _, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, alumni.ID, "hi asha"); err != nil {
		t.Fatal(err)
	}

	// The sender reading their own thread must not flip their own message.
	own, err := f.svc.Messages.ListMessages(f.ctx, conv.ID, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if own[0].Read {
		t.Fatal("sender's own message must stay unread")
	}
	if !own[1].Read {
		t.Fatal("counterpart message must be read after fetching")
	}

	for i := 0; i < 2; i++ {
		msgs, err := f.svc.Messages.ListMessages(f.ctx, conv.ID, alumni.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) != 2 || msgs[0].Content != "hello" {
			t.Fatalf("messages not ordered oldest first: %+v", msgs)
		}
		for _, m := range msgs {
			if !m.Read {
				t.Fatalf("call %d: message %q still unread", i, m.Content)
			}
		}
	}
}

func TestSendMessageUpdatesPreview(t *testing.T) {
	f := newFixture(t, true)
	student, _, conv := newConversation(t, f)

	_, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "   ")
	requireErr(t, err, apperrors.ErrEmptyMessage, apperrors.ErrValidationFailed)

	msg, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "  need help with fees  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Read || msg.Content != "need help with fees" || msg.Sender.DisplayName != "asha" {
		t.Fatalf("unexpected message %+v", msg)
	}

	stored, _ := f.store.Conversations().GetByID(f.ctx, conv.ID)
	if stored.LastMessage == nil || stored.LastMessage.MessageID != msg.ID ||
		stored.LastMessage.SenderID != student.ID || !stored.LastMessage.Timestamp.Equal(msg.CreatedAt) {
		t.Fatalf("preview not updated: %+v", stored.LastMessage)
	}
}

func TestDeleteLastMessageRecomputesPreview(t *testing.T) {
	f := newFixture(t, true)
	student, alumni, conv := newConversation(t, f)

	m1, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "first")
	if err != nil {
		t.Fatal(err)
	}
	m2, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "second")
	if err != nil {
		t.Fatal(err)
	}

	requireErr(t, f.svc.Messages.DeleteMessage(f.ctx, m2.ID, alumni.ID), nil, apperrors.ErrPermissionDenied)

	if err := f.svc.Messages.DeleteMessage(f.ctx, m2.ID, student.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ := f.store.Conversations().GetByID(f.ctx, conv.ID)
	if stored.LastMessage == nil || stored.LastMessage.MessageID != m1.ID || stored.LastMessage.Content != "first" {
		t.Fatalf("preview should fall back to M1: %+v", stored.LastMessage)
	}

	if err := f.svc.Messages.DeleteMessage(f.ctx, m1.ID, student.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ = f.store.Conversations().GetByID(f.ctx, conv.ID)
	if stored.LastMessage != nil {
		t.Fatalf("empty conversation must have no preview: %+v", stored.LastMessage)
	}

	requireErr(t, f.svc.Messages.DeleteMessage(f.ctx, m1.ID, student.ID), apperrors.ErrMessageNotFound, apperrors.ErrResourceNotFound)
}

func TestDeleteOlderMessageKeepsPreview(t *testing.T) {
	f := newFixture(t, true)
	student, _, conv := newConversation(t, f)

	m1, _ := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "first")
	m2, _ := f.svc.Messages.SendMessage(f.ctx, conv.ID, student.ID, "second")

	if err := f.svc.Messages.DeleteMessage(f.ctx, m1.ID, student.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ := f.store.Conversations().GetByID(f.ctx, conv.ID)
	if stored.LastMessage == nil || stored.LastMessage.MessageID != m2.ID {
		t.Fatalf("preview must stay on M2: %+v", stored.LastMessage)
	}
}

func TestNonParticipantIsForbidden(t *testing.T) {
	f := newFixture(t, false)
	_, _, conv := newConversation(t, f)
	stranger := f.addStudent(t, "kiran", nil)

	_, err := f.svc.Messages.ListMessages(f.ctx, conv.ID, stranger.ID)
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)
	_, err = f.svc.Messages.SendMessage(f.ctx, conv.ID, stranger.ID, "hi")
	requireErr(t, err, nil, apperrors.ErrPermissionDenied)
	requireErr(t, f.svc.Messages.ClearMessages(f.ctx, conv.ID, stranger.ID), nil, apperrors.ErrPermissionDenied)
	requireErr(t, f.svc.Messages.DeleteConversation(f.ctx, conv.ID, stranger.ID), nil, apperrors.ErrPermissionDenied)

	_, err = f.svc.Messages.ListMessages(f.ctx, uuid.New(), stranger.ID)
	requireErr(t, err, apperrors.ErrConversationNotFound, apperrors.ErrResourceNotFound)
}

func TestClearAndDeleteConversation(t *testing.T) {
	f := newFixture(t, true)
	student, alumni, conv := newConversation(t, f)

	for _, text := range []string{"a", "b", "c"} {
		if _, err := f.svc.Messages.SendMessage(f.ctx, conv.ID, alumni.ID, text); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.svc.Messages.ClearMessages(f.ctx, conv.ID, student.ID); err != nil {
		t.Fatal(err)
	}
	msgs, _ := f.svc.Messages.ListMessages(f.ctx, conv.ID, student.ID)
	if len(msgs) != 0 {
		t.Fatalf("clear left %d messages", len(msgs))
	}
	stored, _ := f.store.Conversations().GetByID(f.ctx, conv.ID)
	if stored.LastMessage != nil {
		t.Fatal("clear must reset the preview")
	}

	msg, _ := f.svc.Messages.SendMessage(f.ctx, conv.ID, alumni.ID, "d")
	if err := f.svc.Messages.DeleteConversation(f.ctx, conv.ID, alumni.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Conversations().GetByID(f.ctx, conv.ID); err == nil {
		t.Fatal("conversation still exists")
	}
	if _, err := f.store.Messages().GetByID(f.ctx, msg.ID); err == nil {
		t.Fatal("messages must be deleted with the conversation")
	}
}

func TestListConversationsByActivity(t *testing.T) {
	f := newFixture(t, false)
	student := f.addStudent(t, "asha", nil)
	older := f.addAlumni(t, "ravi")
	newer := f.addAlumni(t, "meera")
	silent := f.addAlumni(t, "dev")

	c1, _ := f.svc.Messages.GetOrCreateConversation(f.ctx, student, older.ID, older.Kind)
	c2, _ := f.svc.Messages.GetOrCreateConversation(f.ctx, student, newer.ID, newer.Kind)
	c3, _ := f.svc.Messages.GetOrCreateConversation(f.ctx, student, silent.ID, silent.Kind)
	if _, err := f.svc.Messages.SendMessage(f.ctx, c1.ID, student.ID, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Messages.SendMessage(f.ctx, c2.ID, student.ID, "two"); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.Messages.ListConversations(f.ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != c2.ID || list[1].ID != c1.ID || list[2].ID != c3.ID {
		t.Fatalf("unexpected order %v", []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
	}
}

func TestListUsersToMessage(t *testing.T) {
	f := newFixture(t, true)
	student := f.addStudent(t, "asha", nil)
	connected := f.addAlumni(t, "ravi")
	pending := f.addAlumni(t, "meera")
	peer := f.addStudent(t, "kiran", nil)

	f.connect(t, student, connected)
	f.connect(t, peer, student)
	if _, err := f.svc.Connections.SendRequest(f.ctx, student, pending.ID, pending.Kind, ""); err != nil {
		t.Fatal(err)
	}

	users, err := f.svc.Messages.ListUsersToMessage(f.ctx, student.ID, models.KindStudent)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != connected.ID || users[0].UserType != models.KindAlumni {
		t.Fatalf("expected only the connected alumni, got %+v", users)
	}
	if users[0].Company == nil || *users[0].Company != "Acme" {
		t.Fatal("alumni entries carry company details")
	}

	students, err := f.svc.Messages.ListUsersToMessage(f.ctx, connected.ID, models.KindAlumni)
	if err != nil {
		t.Fatal(err)
	}
	if len(students) != 1 || students[0].ID != student.ID {
		t.Fatalf("expected the connected student, got %+v", students)
	}
}
