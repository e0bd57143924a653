package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TelegramSink delivers alerts through the Telegram bot API.
type TelegramSink struct {
	token      string
	chatID     string
	httpClient *http.Client
}

func NewTelegramSink(token, chatID string, timeoutSec int) *TelegramSink {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &TelegramSink{
		token:  token,
		chatID: chatID,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Send(ctx context.Context, alert Alert) error {
	return s.sendMessage(ctx, formatAlertText(alert))
}

func (s *TelegramSink) SendSummary(ctx context.Context, summary RunSummary) error {
	text := fmt.Sprintf("Monitoreo %s\nNoticias analizadas: %d\nAlertas enviadas: %d",
		summary.Timestamp, summary.ItemsAnalyzed, summary.AlertsSent)
	return s.sendMessage(ctx, text)
}

func (s *TelegramSink) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.token)

	payload, err := json.Marshal(map[string]string{
		"chat_id": s.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}
