package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Error joins all validation errors into a single message.
func (r ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateMonitor(&c.Monitor)...)
	errors = append(errors, validateAddresses(&c.Addresses)...)
	errors = append(errors, validatePolymarket(&c.Polymarket)...)
	errors = append(errors, validateDiscord(&c.Discord)...)

	if c.HealthServer.Enabled {
		errors = append(errors, validateHealthServer(&c.HealthServer)...)
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateMonitor(m *MonitorConfig) []ValidationError {
	var errors []ValidationError

	if m.PollInterval < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "monitor.poll_interval",
			Message: "must be at least 1 second",
		})
	}

	if m.LargeTradeMin < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.large_trade_min",
			Message: "must be non-negative",
		})
	}

	if m.AllTradeMin < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.all_trade_min",
			Message: "must be non-negative",
		})
	}

	if m.SeedLookback < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.seed_lookback",
			Message: "must be non-negative",
		})
	}

	if m.PageSize < 1 || m.PageSize > 10000 {
		errors = append(errors, ValidationError{
			Field:   "monitor.page_size",
			Message: fmt.Sprintf("must be between 1 and 10000, got %d", m.PageSize),
		})
	}

	if m.FetchConcurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "monitor.fetch_concurrency",
			Message: "must be at least 1",
		})
	}

	return errors
}

func validateAddresses(a *AddressesConfig) []ValidationError {
	var errors []ValidationError

	if len(a.LargeOnly)+len(a.AllTrades) == 0 {
		errors = append(errors, ValidationError{
			Field:   "addresses",
			Message: "at least one address must be monitored",
		})
	}

	check := func(field string, addrs []string) {
		for _, addr := range addrs {
			if !isHexAddress(addr) {
				errors = append(errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid address %q", addr),
				})
			}
		}
	}
	check("addresses.large_only", a.LargeOnly)
	check("addresses.all_trades", a.AllTrades)

	return errors
}

func validatePolymarket(p *PolymarketConfig) []ValidationError {
	var errors []ValidationError

	if u, err := url.Parse(p.DataAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "polymarket.data_api_url",
			Message: "must be an absolute URL",
		})
	}

	if p.RequestTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "polymarket.request_timeout",
			Message: "must be positive",
		})
	}

	return errors
}

func validateDiscord(d *DiscordConfig) []ValidationError {
	var errors []ValidationError

	// An empty webhook URL is allowed and means alerts are suppressed.
	if d.WebhookURL != "" {
		if u, err := url.Parse(d.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "discord.webhook_url",
				Message: "must be an absolute URL",
			})
		}
	}

	if d.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "discord.timeout",
			Message: "must be positive",
		})
	}

	return errors
}

func validateHealthServer(hs *HealthServerConfig) []ValidationError {
	var errors []ValidationError

	if hs.Port < 1 || hs.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "health_server.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", hs.Port),
		})
	}

	return errors
}

// isHexAddress reports whether s looks like a 0x-prefixed 20-byte hex address.
func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
