package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TradeAlert contains all the data needed for a trade alert notification.
type TradeAlert struct {
	// Wallet info
	TraderName    string
	TraderAddress string
	WalletURL     string

	// Trade info
	Side     string // BUY or SELL
	Shares   decimal.Decimal
	Price    decimal.Decimal
	Notional decimal.Decimal
	MinValue decimal.Decimal // Threshold the trade cleared

	// Market info
	MarketTitle string
	MarketURL   string
	MarketImage string
	Outcome     string

	// Alert metadata
	Timestamp time.Time
}

// Notifier is the interface for sending trade alerts to various channels.
type Notifier interface {
	// SendTradeAlert sends a trade alert notification.
	// A sink that is not configured returns nil without sending.
	SendTradeAlert(ctx context.Context, alert TradeAlert) error

	// Close cleans up any resources.
	Close() error
}

// MultiNotifier broadcasts alerts to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a new MultiNotifier with the given notifiers.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	// Filter out nil notifiers
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

// SendTradeAlert sends the alert to all registered notifiers.
// A failing notifier does not stop delivery to the others; all failures are
// joined into the returned error.
func (m *MultiNotifier) SendTradeAlert(ctx context.Context, alert TradeAlert) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SendTradeAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all registered notifiers.
func (m *MultiNotifier) Close() error {
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Count returns the number of active notifiers.
func (m *MultiNotifier) Count() int {
	return len(m.notifiers)
}
