package app

import (
	"polywatch/clients/polymarketapi"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeKey identifies a trade within one address's feed.
// Two distinct trades with the same timestamp, price, size and side share a
// key and are treated as one.
type TradeKey string

// TradeKeyOf derives the identity key "<timestamp>-<price>-<size>-<side>".
func TradeKeyOf(trade polymarketapi.Trade) TradeKey {
	var sb strings.Builder
	sb.WriteString(trade.TimeField().String())
	sb.WriteByte('-')
	sb.WriteString(trade.Price.String())
	sb.WriteByte('-')
	sb.WriteString(trade.Size.String())
	sb.WriteByte('-')
	sb.WriteString(trade.Side)
	return TradeKey(sb.String())
}

// IsBuy reports whether the trade side is BUY, ignoring case.
func IsBuy(trade polymarketapi.Trade) bool {
	return strings.EqualFold(strings.TrimSpace(trade.Side), "BUY")
}

// isoLayouts are tried in order for string timestamps that are not numeric.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTradeTime interprets a trade timestamp. Numeric values and numeric
// strings are unix seconds (fractions allowed). Other strings are ISO-8601;
// a trailing "Z" means UTC and timestamps without an offset are read as UTC.
func ParseTradeTime(ts polymarketapi.Timestamp) (time.Time, bool) {
	if !ts.Present {
		return time.Time{}, false
	}

	raw := strings.TrimSpace(ts.Raw)
	if raw == "" {
		return time.Time{}, false
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		sec := d.IntPart()
		nsec := d.Sub(decimal.NewFromInt(sec)).Shift(9).IntPart()
		return time.Unix(sec, nsec).UTC(), true
	}
	if ts.Numeric {
		return time.Time{}, false
	}

	if strings.HasSuffix(raw, "z") {
		raw = raw[:len(raw)-1] + "Z"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AgeSeconds returns how long ago the trade happened relative to now.
// A missing or unparseable timestamp yields 0, so the trade counts as just
// happened.
func AgeSeconds(trade polymarketapi.Trade, now time.Time) float64 {
	t, ok := ParseTradeTime(trade.TimeField())
	if !ok {
		return 0
	}
	return now.Sub(t).Seconds()
}
