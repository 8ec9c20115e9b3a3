package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"lernplan_backend/internal/config"
	"lernplan_backend/internal/store"
	"lernplan_backend/pkg/logger"

	"go.uber.org/zap"
)

// ComposedMessage eine fertig zusammengesetzte ausgehende Nachricht.
// Der Versand selbst ist Sache des (externen) Mail-Kollaborateurs.
type ComposedMessage struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// PushSender der Push-Kollaborateur: ein einzelner HTTP-Aufruf, kein Retry.
type PushSender interface {
	Send(ctx context.Context, message string) (int, error)
}

// PushoverSender schickt eine Nachricht an die Pushover-API.
type PushoverSender struct {
	APIToken string
	UserKey  string
	Endpoint string
	client   *http.Client
}

func NewPushoverSender(apiToken, userKey string) *PushoverSender {
	return &PushoverSender{
		APIToken: apiToken,
		UserKey:  userKey,
		Endpoint: "https://api.pushover.net/1/messages.json",
		client:   &http.Client{Timeout: store.OpTimeout},
	}
}

func (p *PushoverSender) Send(ctx context.Context, message string) (int, error) {
	form := url.Values{}
	form.Set("token", p.APIToken)
	form.Set("user", p.UserKey)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// NotifyService verschickt optionale Erinnerungen. Kein Kerninvariant
// hängt an seinem Erfolg; Fehler werden geloggt und verworfen.
type NotifyService struct {
	mu          sync.Mutex
	cfg         config.NotifyConfig
	push        PushSender
	lastSummary string // Datum der zuletzt verschickten Tageszusammenfassung
}

func NewNotifyService(cfg config.NotifyConfig) *NotifyService {
	s := &NotifyService{}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig übernimmt neu geladene Benachrichtigungs-Einstellungen zur
// Laufzeit (siehe pkg/configwatcher).
func (s *NotifyService) UpdateConfig(cfg config.NotifyConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.push = nil
	if cfg.Enabled && cfg.PushoverToken != "" && cfg.PushoverUserKey != "" {
		s.push = NewPushoverSender(cfg.PushoverToken, cfg.PushoverUserKey)
	}
}

// ComposeDailySummary baut die Mail für die Tageszusammenfassung.
func (s *NotifyService) ComposeDailySummary(daily DailyTotals, exam ExamTotals, daysLeft int) ComposedMessage {
	s.mu.Lock()
	recipient := s.cfg.MailRecipient
	s.mu.Unlock()

	body := fmt.Sprintf(
		"Heute erledigt: %.1fh von %.1fh.\nKlausurfortschritt: %.1f%% (%d von %d Schritten).",
		daily.CompletedHours, daily.TotalHours,
		exam.Percent, exam.CompletedSteps, exam.TotalSteps,
	)
	if daysLeft > 0 {
		body += fmt.Sprintf("\nNoch %d Tage bis zur Klausur.", daysLeft)
	}
	return ComposedMessage{
		Recipient: recipient,
		Subject:   "Lernplan Tageszusammenfassung",
		Body:      body,
	}
}

// SendDailySummary verschickt die Tageszusammenfassung höchstens einmal pro
// Tag; bei fehlgeschlagenem Versand probiert der nächste Tick erneut.
func (s *NotifyService) SendDailySummary(ctx context.Context, today string, msg ComposedMessage) {
	s.mu.Lock()
	push := s.push
	alreadySent := s.lastSummary == today
	s.mu.Unlock()
	if push == nil || alreadySent {
		return
	}

	status, err := push.Send(ctx, msg.Subject+"\n"+msg.Body)
	if err != nil {
		logger.Log.Warn("daily summary failed", zap.Error(err))
		return
	}
	if status != http.StatusOK {
		logger.Log.Warn("daily summary rejected", zap.Int("status", status))
		return
	}

	s.mu.Lock()
	s.lastSummary = today
	s.mu.Unlock()
}

// RemindIfBehind schickt eine Push-Erinnerung, wenn das nötige Tagespensum
// über der Schwelle liegt.
func (s *NotifyService) RemindIfBehind(ctx context.Context, pace float64) {
	s.mu.Lock()
	push := s.push
	s.mu.Unlock()
	if push == nil || pace <= PaceBehindThreshold {
		return
	}

	msg := fmt.Sprintf("Du bist hinter dem Zeitplan: %.1f Lernschritte pro Tag nötig.", pace)
	status, err := push.Send(ctx, msg)
	if err != nil {
		logger.Log.Warn("push notification failed", zap.Error(err))
		return
	}
	if status != http.StatusOK {
		logger.Log.Warn("push notification rejected", zap.Int("status", status))
	}
}
