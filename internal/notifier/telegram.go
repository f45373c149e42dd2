package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TelegramNotifier sends messages through the Telegram bot API.
type TelegramNotifier struct {
	token   string
	chatID  string
	client  *http.Client
	retries int
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
		retries: 3,
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send delivers the message, retrying transient failures with a short backoff.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	var lastErr error
	for attempt := 1; attempt <= t.retries; attempt++ {
		if err := t.send(ctx, text); err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("telegram send failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second << (attempt - 1)):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("telegram: all %d attempts failed: %w", t.retries, lastErr)
}

func (t *TelegramNotifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
