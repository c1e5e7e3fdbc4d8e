package app

import (
	"context"
	"polywatch/clients/notifier"
	"polywatch/clients/polymarketapi"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	polymarketEventURL   = "https://polymarket.com/event/"
	polymarketProfileURL = "https://polymarket.com/profile/"
)

// NotifyOutcome is what Alerter.Notify did with a trade.
type NotifyOutcome int

const (
	// Suppressed means the trade was below its threshold and nothing was sent.
	Suppressed NotifyOutcome = iota
	// Sent means the alert was handed to the notifier.
	Sent
)

func (o NotifyOutcome) String() string {
	if o == Sent {
		return "sent"
	}
	return "suppressed"
}

// AlertCounts are the alerter's running totals.
type AlertCounts struct {
	Sent       uint64 `json:"sent"`
	Suppressed uint64 `json:"suppressed"`
	Failed     uint64 `json:"failed"`
}

// Alerter gates trades on their notional value and forwards the rest to a
// notifier. Delivery errors are logged and dropped.
type Alerter struct {
	logger   *zap.Logger
	notifier notifier.Notifier
	now      func() time.Time

	sent       atomic.Uint64
	suppressed atomic.Uint64
	failed     atomic.Uint64
}

func NewAlerter(logger *zap.Logger, n notifier.Notifier, now func() time.Time) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Alerter{logger: logger, notifier: n, now: now}
}

// TradeValue returns size × price. Malformed fields count as zero.
func TradeValue(trade polymarketapi.Trade) decimal.Decimal {
	return trade.Size.Decimal().Mul(trade.Price.Decimal())
}

// Notify alerts on a trade whose value reaches minValue.
func (a *Alerter) Notify(ctx context.Context, trade polymarketapi.Trade, address string, minValue decimal.Decimal) NotifyOutcome {
	value := TradeValue(trade)
	if value.LessThan(minValue) {
		a.suppressed.Add(1)
		a.logger.Info("alert suppressed below threshold",
			zap.String("address", shortID(address)),
			zap.String("value", notifier.FormatUSD(value)),
			zap.String("minValue", notifier.FormatUSD(minValue)),
			zap.String("market", notifier.Truncate(marketTitle(trade), 60)),
		)
		return Suppressed
	}

	alert := a.buildAlert(trade, address, value, minValue)
	if a.notifier != nil {
		if err := a.notifier.SendTradeAlert(ctx, alert); err != nil {
			a.failed.Add(1)
			a.logger.Warn("alert delivery failed",
				zap.String("address", shortID(address)),
				zap.String("trader", alert.TraderName),
				zap.Error(err),
			)
		}
	}
	a.sent.Add(1)
	return Sent
}

func (a *Alerter) buildAlert(trade polymarketapi.Trade, address string, value, minValue decimal.Decimal) notifier.TradeAlert {
	ts, ok := ParseTradeTime(trade.TimeField())
	if !ok {
		ts = a.now()
	}

	var marketURL string
	if slug := nz(trade.EventSlug, trade.Slug); slug != "" {
		marketURL = polymarketEventURL + slug
	}

	return notifier.TradeAlert{
		TraderName:    traderName(trade, address),
		TraderAddress: address,
		WalletURL:     polymarketProfileURL + address,
		Side:          "BUY",
		Shares:        trade.Size.Decimal(),
		Price:         trade.Price.Decimal(),
		Notional:      value,
		MinValue:      minValue,
		MarketTitle:   marketTitle(trade),
		MarketURL:     marketURL,
		MarketImage:   trade.Icon,
		Outcome:       trade.Outcome,
		Timestamp:     ts.UTC(),
	}
}

// Counts returns the running totals.
func (a *Alerter) Counts() AlertCounts {
	return AlertCounts{
		Sent:       a.sent.Load(),
		Suppressed: a.suppressed.Load(),
		Failed:     a.failed.Load(),
	}
}

// traderName prefers the profile name, then the pseudonym, then the short address.
func traderName(trade polymarketapi.Trade, address string) string {
	return nz(trade.Name, nz(trade.Pseudonym, notifier.ShortAddress(address)))
}

func marketTitle(trade polymarketapi.Trade) string {
	return nz(trade.Title, nz(trade.Market, "?"))
}
