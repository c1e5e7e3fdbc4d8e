package clients

import (
	"polywatch/clients/discord"
	"polywatch/clients/notifier"
	"polywatch/clients/polymarketapi"
	"polywatch/clients/telegram"
	"polywatch/config"

	"go.uber.org/zap"
)

type Clients struct {
	Logger *zap.Logger

	Discord    *discord.WebhookClient
	Telegram   *telegram.TelegramClient
	Notifier   notifier.Notifier // Combined notifier for all channels
	Polymarket *polymarketapi.PolymarketApiClient
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	if logger == nil {
		logger = zap.NewNop()
	}

	discordClient := discord.NewWebhookClient(logger, cfg)

	// Telegram is optional; only fan out to it when configured
	var telegramClient *telegram.TelegramClient
	sinks := []notifier.Notifier{discordClient}
	if tc := telegram.NewTelegramClient(logger, cfg); tc.Enabled() {
		telegramClient = tc
		sinks = append(sinks, tc)
	}

	return &Clients{
		Logger:     logger,
		Discord:    discordClient,
		Telegram:   telegramClient,
		Notifier:   notifier.NewMultiNotifier(sinks...),
		Polymarket: polymarketapi.NewPolymarketApiClient(logger, cfg),
	}
}
