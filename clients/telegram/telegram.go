package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"polywatch/clients/notifier"
	"polywatch/config"
	"strings"
	"time"

	"go.uber.org/zap"
)

const telegramAPIURL = "https://api.telegram.org/bot%s/%s"

// TelegramClient sends alerts to Telegram.
// Implements notifier.Notifier interface.
type TelegramClient struct {
	logger   *zap.Logger
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramClient(logger *zap.Logger, cfg *config.Config) *TelegramClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	token := cfg.Telegram.BotToken
	if token == "" || cfg.Telegram.ChatID == "" {
		logger.Debug("telegram not configured, Telegram alerts disabled")
		return &TelegramClient{
			logger: logger,
			apiURL: telegramAPIURL,
			chatID: cfg.Telegram.ChatID,
		}
	}

	logger.Info("telegram bot initialized", zap.String("chatID", cfg.Telegram.ChatID))

	return &TelegramClient{
		logger:   logger,
		apiURL:   telegramAPIURL,
		botToken: token,
		chatID:   cfg.Telegram.ChatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether both a bot token and a chat are configured.
func (tc *TelegramClient) Enabled() bool {
	return tc.botToken != "" && tc.chatID != ""
}

// SendTradeAlert sends a trade alert notification.
// Implements notifier.Notifier interface.
func (tc *TelegramClient) SendTradeAlert(ctx context.Context, alert notifier.TradeAlert) error {
	if !tc.Enabled() {
		return nil
	}

	if err := tc.sendMessage(ctx, buildAlertMessage(alert)); err != nil {
		tc.logger.Error("failed to send telegram message", zap.Error(err))
		return err
	}

	tc.logger.Info("sent telegram trade alert",
		zap.String("trader", alert.TraderName),
		zap.String("market", notifier.Truncate(alert.MarketTitle, 50)),
	)
	return nil
}

func buildAlertMessage(alert notifier.TradeAlert) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*📈 %s by %s*\n\n", escapeMarkdown(alert.Side), escapeMarkdown(alert.TraderName)))

	if alert.MarketURL != "" {
		sb.WriteString(fmt.Sprintf("*Market:* [%s](%s)\n", escapeMarkdown(alert.MarketTitle), alert.MarketURL))
	} else {
		sb.WriteString(fmt.Sprintf("*Market:* %s\n", escapeMarkdown(alert.MarketTitle)))
	}
	if alert.Outcome != "" {
		sb.WriteString(fmt.Sprintf("*Outcome:* %s\n", escapeMarkdown(alert.Outcome)))
	}
	sb.WriteString("\n")

	traderDisplay := alert.TraderName
	if alert.TraderAddress != "" {
		shortAddr := notifier.ShortAddress(alert.TraderAddress)
		if traderDisplay != shortAddr {
			traderDisplay = fmt.Sprintf("%s (%s)", alert.TraderName, shortAddr)
		}
	}
	if alert.WalletURL != "" {
		sb.WriteString(fmt.Sprintf("*Trader:* [%s](%s)\n", escapeMarkdown(traderDisplay), alert.WalletURL))
	} else {
		sb.WriteString(fmt.Sprintf("*Trader:* %s\n", escapeMarkdown(traderDisplay)))
	}

	sb.WriteString(fmt.Sprintf("*Trade:* %s shares @ %s\n",
		notifier.FormatShares(alert.Shares), notifier.FormatPrice(alert.Price)))
	sb.WriteString(fmt.Sprintf("*Value:* %s\n", notifier.FormatUSD(alert.Notional)))

	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(fmt.Sprintf("\n_%s UTC_", ts.UTC().Format("15:04:05")))

	return sb.String()
}

func (tc *TelegramClient) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf(tc.apiURL, tc.botToken, "sendMessage")

	payload := map[string]interface{}{
		"chat_id":                  tc.chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// Close cleans up resources. Implements notifier.Notifier interface.
func (tc *TelegramClient) Close() error {
	return nil
}

// escapeMarkdown escapes special characters for Telegram Markdown.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
