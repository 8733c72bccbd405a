// Package telegram sends messages through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobcompass/internal/logger"
)

const defaultAPIURL = "https://api.telegram.org"

type Notifier struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

func New(token string, logger *zap.Logger) *Notifier {
	return &Notifier{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		APIURL: defaultAPIURL,
	}
}

// Send delivers one Markdown message to a chat via sendMessage.
func (n *Notifier) Send(ctx context.Context, chatID, text string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.APIURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendMessage returned status %d: %s", resp.StatusCode, string(body))
	}

	n.logger.Debug("message sent",
		zap.String("chat_id", chatID),
		zap.String("preview", logger.TruncateForLog(text, 80)),
	)

	return nil
}
