// Package telegram provides Telegram bot integration for centerhub.
//
// This package handles:
//   - Posting dashboard notices to the operations chat
//   - Answering chat commands (/search, /refresh, /summary, /options, ...)
//   - Sending rendered summary tables as photos
//   - Long polling for updates
//
// Architecture:
//   - Client: Bot API transport (token, chat id, HTTP)
//   - Bot: Command handling on top of Client and the dashboard
//
// A nil *Client is valid: every method is a no-op, so callers never need to
// check whether Telegram is configured.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"centerhub/internal/dashboard"
)

// DefaultAPIURL is the Bot API root.
const DefaultAPIURL = "https://api.telegram.org"

// pollTimeout is the long polling window in seconds.
const pollTimeout = 30

// Client represents a Telegram bot client.
type Client struct {
	BotToken  string
	ChatID    string
	DebugMode bool

	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL points the client at another Bot API root (useful for testing).
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDebugMode makes every API call a logged no-op.
func WithDebugMode(debug bool) Option {
	return func(c *Client) { c.DebugMode = debug }
}

// NewClient creates a Telegram client.
//
// Returns nil when the token or chat id is missing; Telegram is then
// disabled and every method on the nil client does nothing.
func NewClient(botToken, chatID string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if botToken == "" || chatID == "" {
		logger.Info("⚠️  Telegram not configured, chat surface disabled")
		return nil
	}

	c := &Client{
		BotToken: botToken,
		ChatID:   chatID,
		apiURL:   DefaultAPIURL,
		// Long polling needs 30s poll + 30s overhead
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.DebugMode {
		logger.Info("🐛 DEBUG MODE ENABLED - Telegram calls will be simulated")
	}
	logger.Info("✓ Telegram configured successfully")
	return c
}

// apiResponse is the envelope of every Bot API answer.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.BotToken, method)
}

// doRequest posts a JSON payload to a Bot API method and returns its result.
func (c *Client) doRequest(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) send(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
	}
	return result.Result, nil
}

// sentMessage is the part of a sent message we read back.
type sentMessage struct {
	MessageID int `json:"message_id"`
}

// SendMessage sends an HTML message to chatID and returns its message id.
// An empty chatID means the configured chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) (int, error) {
	if c == nil {
		return 0, nil
	}
	if chatID == "" {
		chatID = c.ChatID
	}
	if c.DebugMode {
		c.logger.Debug("🐛 [DEBUG] Would send message", zap.String("chat", chatID), zap.String("text", text))
		return 0, nil
	}

	msg := Message{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	if markup != nil && len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}

	raw, err := c.doRequest(ctx, "sendMessage", msg)
	if err != nil {
		return 0, err
	}
	var sent sentMessage
	if err := json.Unmarshal(raw, &sent); err != nil {
		return 0, fmt.Errorf("failed to parse sent message: %w", err)
	}
	return sent.MessageID, nil
}

// SendPhoto uploads a PNG to chatID with an optional caption.
// An empty chatID means the configured chat.
func (c *Client) SendPhoto(ctx context.Context, chatID string, png []byte, caption string) error {
	if c == nil {
		return nil
	}
	if chatID == "" {
		chatID = c.ChatID
	}
	if c.DebugMode {
		c.logger.Debug("🐛 [DEBUG] Would send photo", zap.String("chat", chatID), zap.Int("bytes", len(png)))
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("chat_id", chatID)
	if caption != "" {
		_ = w.WriteField("caption", caption)
	}
	part, err := w.CreateFormFile("photo", "summary.png")
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, err = c.send(req)
	return err
}

// Notify posts a dashboard notice to the configured chat.
func (c *Client) Notify(ctx context.Context, n dashboard.Notice) error {
	if c == nil {
		return nil
	}
	icon := "✅"
	if n.Kind == dashboard.KindError {
		icon = "⚠️"
	}
	_, err := c.SendMessage(ctx, "", icon+" "+escape(n.Message), nil)
	return err
}

// getUpdates fetches new updates using long polling.
func (c *Client) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}
	raw, err := c.doRequest(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// answerCallbackQuery acknowledges a button click.
func (c *Client) answerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackQueryID,
		"text":              text,
		"show_alert":        false,
	}
	_, err := c.doRequest(ctx, "answerCallbackQuery", payload)
	return err
}

// chatIDString renders a numeric chat id the way the Bot API accepts it.
func chatIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
