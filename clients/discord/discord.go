package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"polywatch/clients/notifier"
	"polywatch/config"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	buyColor        = 5763719 // Discord green
	defaultTimeout  = 8 * time.Second
	maxErrorBodyLen = 200
)

// WebhookClient posts trade alerts to a Discord webhook.
// Implements notifier.Notifier interface.
type WebhookClient struct {
	logger     *zap.Logger
	webhookURL string
	client     *http.Client
}

func NewWebhookClient(logger *zap.Logger, cfg *config.Config) *WebhookClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Discord.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if cfg.Discord.WebhookURL == "" {
		logger.Warn("DISCORD_WEBHOOK_URL not set, Discord alerts suppressed")
	} else {
		logger.Info("discord webhook initialized", zap.Duration("timeout", timeout))
	}

	return &WebhookClient{
		logger:     logger,
		webhookURL: cfg.Discord.WebhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook URL is configured.
func (wc *WebhookClient) Enabled() bool {
	return wc.webhookURL != ""
}

// SendTradeAlert posts a rich embedded trade alert.
// Delivery is attempted once; failures are logged and returned.
func (wc *WebhookClient) SendTradeAlert(ctx context.Context, alert notifier.TradeAlert) error {
	if !wc.Enabled() {
		wc.logger.Warn("DISCORD_WEBHOOK_URL not set, alert suppressed",
			zap.String("trader", alert.TraderName),
			zap.String("market", notifier.Truncate(alert.MarketTitle, 60)),
		)
		return nil
	}

	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{buildTradeEmbed(alert)},
	}

	if err := wc.post(ctx, params); err != nil {
		wc.logger.Error("failed to send discord webhook", zap.Error(err))
		return err
	}

	wc.logger.Info("sent discord trade alert",
		zap.String("trader", alert.TraderName),
		zap.String("shares", notifier.FormatShares(alert.Shares)),
		zap.String("price", notifier.FormatPrice(alert.Price)),
		zap.String("value", notifier.FormatUSD(alert.Notional)),
		zap.String("market", notifier.Truncate(alert.MarketTitle, 50)),
	)
	return nil
}

func (wc *WebhookClient) post(ctx context.Context, params *discordgo.WebhookParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wc.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("discord webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func buildTradeEmbed(alert notifier.TradeAlert) *discordgo.MessageEmbed {
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	trader := alert.TraderName
	if alert.WalletURL != "" {
		trader = fmt.Sprintf("%s - %s", alert.TraderName, alert.WalletURL)
	}

	market := alert.MarketTitle
	if alert.MarketURL != "" {
		market = fmt.Sprintf("[%s](%s)", alert.MarketTitle, alert.MarketURL)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Trader", Value: trader, Inline: false},
		{Name: "Shares", Value: notifier.FormatShares(alert.Shares), Inline: true},
		{Name: "Price", Value: notifier.FormatPrice(alert.Price), Inline: true},
		{Name: "Value", Value: notifier.FormatUSD(alert.Notional), Inline: true},
		{Name: "Market", Value: market, Inline: false},
	}

	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("📈 %s by %s", alert.Side, alert.TraderName),
		URL:    alert.MarketURL,
		Color:  buyColor,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: ts.Format("15:04:05") + " UTC",
		},
		Timestamp: ts.Format(time.RFC3339),
	}

	if alert.MarketImage != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: alert.MarketImage}
	}

	return embed
}

// Close releases idle connections.
func (wc *WebhookClient) Close() error {
	wc.client.CloseIdleConnections()
	return nil
}
