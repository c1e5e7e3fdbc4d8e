package polymarketapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Trade represents a trade from the data API.
// The API gives no uniqueness guarantee for a trade; callers derive identity
// from timestamp, price, size and side.
type Trade struct {
	ProxyWallet     string    `json:"proxyWallet"`
	Side            string    `json:"side"` // BUY or SELL
	Size            Number    `json:"size"`
	Price           Number    `json:"price"`
	Timestamp       Timestamp `json:"timestamp"`
	CreatedAt       Timestamp `json:"createdAt"`
	CreatedAtSnake  Timestamp `json:"created_at"`
	ConditionID     string    `json:"conditionId"`
	Asset           string    `json:"asset"`
	TransactionHash string    `json:"transactionHash"`

	// Market metadata
	Title     string `json:"title"`
	Market    string `json:"market"`
	Slug      string `json:"slug"`
	EventSlug string `json:"eventSlug"`
	Icon      string `json:"icon"` // Market image URL
	Outcome   string `json:"outcome"`

	// User profile
	Name      string `json:"name"`
	Pseudonym string `json:"pseudonym"`
}

// TimeField returns the first present timestamp among timestamp, createdAt
// and created_at.
func (t Trade) TimeField() Timestamp {
	switch {
	case t.Timestamp.Present:
		return t.Timestamp
	case t.CreatedAt.Present:
		return t.CreatedAt
	default:
		return t.CreatedAtSnake
	}
}

// Number is a numeric field that may be encoded as a JSON number or as a
// string. Malformed values decode without error: Valid is false, Value is
// zero and Raw keeps the text that was received.
type Number struct {
	Value decimal.Decimal
	Raw   string
	Valid bool
}

// NewNumber builds a valid Number from a float.
func NewNumber(f float64) Number {
	d := decimal.NewFromFloat(f)
	return Number{Value: d, Raw: d.String(), Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "" || raw == "null" {
		*n = Number{}
		return nil
	}

	text := raw
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = Number{Raw: raw}
			return nil
		}
		text = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		*n = Number{Raw: text}
		return nil
	}
	*n = Number{Value: d, Raw: text, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid:
		return []byte(n.Value.String()), nil
	case n.Raw != "":
		return json.Marshal(n.Raw)
	default:
		return []byte("null"), nil
	}
}

// Decimal returns the parsed value, or zero when the field was missing or
// malformed.
func (n Number) Decimal() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Value
}

// String formats the value canonically so 0.5, "0.5" and "0.50" agree.
// Malformed values fall back to the received text.
func (n Number) String() string {
	if n.Valid {
		return n.Value.String()
	}
	return n.Raw
}

// Timestamp is a trade time that may be a unix number or a string.
// It is kept as received; see app.ParseTradeTime for interpretation.
type Timestamp struct {
	Raw     string
	Numeric bool
	Present bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "" || raw == "null" {
		*t = Timestamp{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*t = Timestamp{Raw: raw, Present: true}
			return nil
		}
		s = strings.TrimSpace(s)
		*t = Timestamp{Raw: s, Present: s != ""}
		return nil
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		*t = Timestamp{Raw: d.String(), Numeric: true, Present: true}
		return nil
	}

	*t = Timestamp{Raw: raw, Present: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case !t.Present:
		return []byte("null"), nil
	case t.Numeric:
		return []byte(t.Raw), nil
	default:
		return json.Marshal(t.Raw)
	}
}

// String returns the timestamp as received.
func (t Timestamp) String() string {
	return t.Raw
}

// UnixTimestamp builds a numeric Timestamp from unix seconds.
func UnixTimestamp(sec int64) Timestamp {
	return Timestamp{Raw: decimal.NewFromInt(sec).String(), Numeric: true, Present: true}
}

// StringTimestamp builds a string Timestamp.
func StringTimestamp(s string) Timestamp {
	return Timestamp{Raw: s, Present: s != ""}
}
