package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Discord webhook sink
	Discord DiscordConfig `json:"discord"`

	// Telegram (optional second sink)
	Telegram TelegramConfig `json:"telegram"`

	// Poll loop and thresholds
	Monitor MonitorConfig `json:"monitor"`

	// Monitored wallets
	Addresses AddressesConfig `json:"addresses"`

	// Polymarket API
	Polymarket PolymarketConfig `json:"polymarket"`

	// Health server
	HealthServer HealthServerConfig `json:"health_server"`

	// Logging
	LogLevel string `json:"log_level"`
}

// DiscordConfig holds Discord webhook configuration.
type DiscordConfig struct {
	WebhookURL string        `json:"-"` // Excluded - env var only
	Timeout    time.Duration `json:"timeout"`
}

// TelegramConfig holds Telegram-related configuration.
type TelegramConfig struct {
	BotToken string `json:"-"` // Excluded - env var only
	ChatID   string `json:"chat_id"`
}

// MonitorConfig holds poll loop configuration.
type MonitorConfig struct {
	PollInterval     time.Duration `json:"poll_interval"`
	LargeTradeMin    float64       `json:"large_trade_min"`    // Threshold for the large-trade-only group
	AllTradeMin      float64       `json:"all_trade_min"`      // Threshold for the all-trades group
	SeedLookback     time.Duration `json:"seed_lookback"`      // Buys younger than this at startup still alert
	PageSize         int           `json:"page_size"`          // Trades fetched per address per poll
	FetchConcurrency int           `json:"fetch_concurrency"` // Parallel address fetches per cycle (1 = sequential)
}

// AddressesConfig holds the two monitored address groups.
// An address present in both groups uses the all-trades threshold.
type AddressesConfig struct {
	LargeOnly []string `json:"large_only"`
	AllTrades []string `json:"all_trades"`
}

// PolymarketConfig holds Polymarket API configuration.
type PolymarketConfig struct {
	DataAPIURL     string        `json:"data_api_url"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// HealthServerConfig holds health check server configuration.
type HealthServerConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// DefaultLargeOnlyAddresses are monitored for large trades only.
var DefaultLargeOnlyAddresses = []string{
	"0xcc500cbcc8b7cf5bd21975ebbea34f21b5644c82",
	"0x55be7aa03ecfbe37aa5460db791205f7ac9ddca3",
	"0xebf79787ab928c803cbef6fa8e0abe42b9e1da78",
	"0x4a38e6e0330c2463fb5ac2188a620634039abfe8",
	"0x589222a5124a96765443b97a3498d89ffd824ad2",
	"0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d",
	"0x28065f1b88027422274fb33e1e22bf3dad5736e7",
	"0xe9c6312464b52aa3eff13d822b003282075995c9",
	"0x6a72f61820b26b1fe4d956e17b6dc2a1ea3033ee",
	"0xd25c72ac0928385610611c8148803dc717334d20",
	"0x03e8a544e97eeff5753bc1e90d46e5ef22af1697",
	"0xc2e7800b5af46e6093872b177b7a5e7f0563be51",
	"0x1d8a377c5020f612ce63a0a151970df64baae842",
	"0xd0b4c4c020abdc88ad9a884f999f3d8cff8ffed6",
	"0x43372356634781eea88d61bbdd7824cdce958882",
	"0x13414a77a4be48988851c73dfd824d0168e70853",
	"0x9d84ce0306f8551e02efef1680475fc0f1dc1344",
}

// DefaultAllTradesAddresses are monitored for every trade above the small threshold.
var DefaultAllTradesAddresses = []string{
	"0xf705fa045201391d9632b7f3cde06a5e24453ca7",
	"0xcc500cbcc8b7cf5bd21975ebbea34f21b5644c82",
	"0x7744bfd749a70020d16a1fcbac1d064761c9999e",
	"0x90ed5bffbffbfc344aa1195572d89719a398b5bc",
	"0xf2f6af4f27ec2dcf4072095ab804016e14cd5817",
	"0x57cd939930fd119067ca9dc42b22b3e15708a0fb",
	"0xccb290b1c145d1c95695d3756346bba9f1398586",
	"0xe24838258b572f1771dffba3bcdde57a78def293",
	"0x6ade597c0e2b43c0bf3542cada8a5e330d73f5b0",
	"0x8b3234f9027f4e994e949df4b48b90ab79015950",
	"0x13414a77a4be48988851c73dfd824d0168e70853",
	"0x93abbc022ce98d6f45d4444b594791cc4b7a9723",
	"0x9cb990f1862568a63d8601efeebe0304225c32f2",
	"0xe6a3778e5c3f93958534684ed7308b4625622f0d",
	"0x14964aefa2cd7caff7878b3820a690a03c5aa429",
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Addresses.LargeOnly != nil {
		clone.Addresses.LargeOnly = make([]string, len(c.Addresses.LargeOnly))
		copy(clone.Addresses.LargeOnly, c.Addresses.LargeOnly)
	}
	if c.Addresses.AllTrades != nil {
		clone.Addresses.AllTrades = make([]string, len(c.Addresses.AllTrades))
		copy(clone.Addresses.AllTrades, c.Addresses.AllTrades)
	}
	return &clone
}

// ToJSON serializes the config to JSON. Secrets are excluded.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		Discord: DiscordConfig{
			Timeout: 8 * time.Second,
		},
		Telegram: TelegramConfig{},
		Monitor: MonitorConfig{
			PollInterval:     30 * time.Second,
			LargeTradeMin:    10000,
			AllTradeMin:      100,
			SeedLookback:     120 * time.Second,
			PageSize:         110,
			FetchConcurrency: 1,
		},
		Addresses: AddressesConfig{
			LargeOnly: normalizeWallets(DefaultLargeOnlyAddresses),
			AllTrades: normalizeWallets(DefaultAllTradesAddresses),
		},
		Polymarket: PolymarketConfig{
			DataAPIURL:     "https://data-api.polymarket.com",
			RequestTimeout: 10 * time.Second,
		},
		HealthServer: HealthServerConfig{
			Enabled: false,
			Port:    8080,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is read first if present; real
// environment variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Discord: DiscordConfig{
			WebhookURL: envString("DISCORD_WEBHOOK_URL", ""),
			Timeout:    envDuration("WEBHOOK_TIMEOUT", 8*time.Second),
		},

		Telegram: TelegramConfig{
			BotToken: envString("TELEGRAM_BOT_KEY", ""),
			ChatID:   envString("TELEGRAM_CHAT_ID", ""),
		},

		Monitor: MonitorConfig{
			PollInterval:     envDuration("CHECK_DELAY", 30*time.Second),
			LargeTradeMin:    envFloat("MIN_LARGE_TRADE_VALUE", 10000),
			AllTradeMin:      envFloat("MIN_ALL_TRADE_VALUE", 100),
			SeedLookback:     envDuration("SEED_LOOKBACK_SECONDS", 120*time.Second),
			PageSize:         envInt("TRADE_PAGE_SIZE", 110),
			FetchConcurrency: envInt("MONITOR_FETCH_CONCURRENCY", 1),
		},

		Addresses: AddressesConfig{
			LargeOnly: normalizeWallets(envStringSliceDefault("MONITORED_ADDRESSES_LARGE_ONLY", DefaultLargeOnlyAddresses)),
			AllTrades: normalizeWallets(envStringSliceDefault("MONITORED_ADDRESSES_ALL_TRADES", DefaultAllTradesAddresses)),
		},

		Polymarket: PolymarketConfig{
			DataAPIURL:     envString("POLYMARKET_DATA_API_URL", "https://data-api.polymarket.com"),
			RequestTimeout: envDuration("TRADE_FETCH_TIMEOUT", 10*time.Second),
		},

		HealthServer: HealthServerConfig{
			Enabled: envBoolDefault("HEALTH_SERVER_ENABLED", false),
			Port:    envInt("HEALTH_SERVER_PORT", 8080),
		},

		LogLevel: envString("LOG_LEVEL", "info"),
	}
}

// Helper functions for parsing environment variables

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// envDuration accepts Go durations ("45s", "2m") and bare numbers, which are
// read as seconds.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultVal
}

func envBoolDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1") || strings.EqualFold(v, "yes")
}

func envStringSliceDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func normalizeWallets(wallets []string) []string {
	if wallets == nil {
		return nil
	}
	result := make([]string, len(wallets))
	for i, w := range wallets {
		result[i] = strings.ToLower(strings.TrimSpace(w))
	}
	return result
}
