package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"lernplan_backend/internal/config"
)

type fakePush struct {
	sent   []string
	status int
	err    error
}

func (f *fakePush) Send(ctx context.Context, message string) (int, error) {
	f.sent = append(f.sent, message)
	if f.status == 0 {
		return http.StatusOK, f.err
	}
	return f.status, f.err
}

func TestComposeDailySummary(t *testing.T) {
	s := NewNotifyService(config.NotifyConfig{MailRecipient: "ich@example.org"})

	msg := s.ComposeDailySummary(
		DailyTotals{TotalHours: 4, CompletedHours: 3},
		ExamTotals{TotalSteps: 12, CompletedSteps: 6, Percent: 50},
		10,
	)

	if msg.Recipient != "ich@example.org" {
		t.Fatalf("recipient = %q", msg.Recipient)
	}
	if msg.Subject == "" {
		t.Fatal("empty subject")
	}
	for _, want := range []string{"3.0", "4.0", "50.0", "10 Tage"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q: %s", want, msg.Body)
		}
	}
}

func TestComposeDailySummaryWithoutExamDate(t *testing.T) {
	s := NewNotifyService(config.NotifyConfig{})
	msg := s.ComposeDailySummary(DailyTotals{}, ExamTotals{}, 0)
	if strings.Contains(msg.Body, "Tage bis zur Klausur") {
		t.Fatalf("countdown mentioned without exam date: %s", msg.Body)
	}
}

func TestRemindIfBehind(t *testing.T) {
	push := &fakePush{}
	s := NewNotifyService(config.NotifyConfig{})
	s.push = push

	// Pensum an der Schwelle löst keine Erinnerung aus
	s.RemindIfBehind(context.Background(), PaceBehindThreshold)
	if len(push.sent) != 0 {
		t.Fatalf("reminder sent at threshold: %v", push.sent)
	}

	s.RemindIfBehind(context.Background(), PaceBehindThreshold+2)
	if len(push.sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(push.sent))
	}
	if !strings.Contains(push.sent[0], "8.0") {
		t.Fatalf("reminder does not name the pace: %s", push.sent[0])
	}
}

func TestSendDailySummaryOncePerDay(t *testing.T) {
	push := &fakePush{}
	s := NewNotifyService(config.NotifyConfig{})
	s.push = push

	msg := ComposedMessage{Subject: "Lernplan Tageszusammenfassung", Body: "Heute erledigt: 3.0h von 4.0h."}

	s.SendDailySummary(context.Background(), "2025-03-10", msg)
	s.SendDailySummary(context.Background(), "2025-03-10", msg)
	if len(push.sent) != 1 {
		t.Fatalf("expected 1 summary for the day, got %d", len(push.sent))
	}
	if !strings.Contains(push.sent[0], "Tageszusammenfassung") {
		t.Fatalf("summary missing subject: %s", push.sent[0])
	}

	// Am nächsten Tag geht sie wieder raus
	s.SendDailySummary(context.Background(), "2025-03-11", msg)
	if len(push.sent) != 2 {
		t.Fatalf("expected 2 summaries across two days, got %d", len(push.sent))
	}
}

func TestSendDailySummaryRetriesAfterFailure(t *testing.T) {
	push := &fakePush{status: http.StatusInternalServerError}
	s := NewNotifyService(config.NotifyConfig{})
	s.push = push

	msg := ComposedMessage{Subject: "Lernplan Tageszusammenfassung", Body: "x"}

	// Abgelehnter Versand markiert den Tag nicht als erledigt
	s.SendDailySummary(context.Background(), "2025-03-10", msg)
	push.status = http.StatusOK
	s.SendDailySummary(context.Background(), "2025-03-10", msg)
	if len(push.sent) != 2 {
		t.Fatalf("expected a retry after rejection, got %d sends", len(push.sent))
	}

	s.SendDailySummary(context.Background(), "2025-03-10", msg)
	if len(push.sent) != 2 {
		t.Fatal("summary sent again after success on the same day")
	}
}

func TestRemindIfBehindWithoutSender(t *testing.T) {
	s := NewNotifyService(config.NotifyConfig{})
	// Kein Sender konfiguriert: darf nicht panicen
	s.RemindIfBehind(context.Background(), 99)
}
