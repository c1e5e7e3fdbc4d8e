package polymarketapi

import (
	"encoding/json"
	"testing"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantStr   string
	}{
		{"json number", `0.5`, true, "0.5"},
		{"quoted number", `"0.5"`, true, "0.5"},
		{"trailing zeros", `"0.50"`, true, "0.5"},
		{"integer", `1000`, true, "1000"},
		{"exponent", `1e3`, true, "1000"},
		{"malformed string", `"abc"`, false, "abc"},
		{"null", `null`, false, ""},
		{"bool", `true`, false, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", n.Valid, tt.wantValid)
			}
			if n.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", n.String(), tt.wantStr)
			}
			if !n.Valid && !n.Decimal().IsZero() {
				t.Errorf("expected zero decimal for invalid number, got %s", n.Decimal())
			}
		})
	}
}

func TestNumber_MalformedDoesNotFailRecord(t *testing.T) {
	var trades []Trade
	input := `[{"price": "n/a", "size": {"x": 1}, "side": "BUY"}, {"price": 0.3, "size": 10, "side": "BUY"}]`
	if err := json.Unmarshal([]byte(input), &trades); err != nil {
		t.Fatalf("malformed numeric fields should not fail decoding: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price.Valid || trades[0].Size.Valid {
		t.Error("expected malformed fields to be invalid")
	}
	if !trades[1].Price.Valid {
		t.Error("expected well-formed price to be valid")
	}
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRaw     string
		wantNumeric bool
		wantPresent bool
	}{
		{"unix seconds", `1700000000`, "1700000000", true, true},
		{"unix float", `1700000000.0`, "1700000000", true, true},
		{"iso string", `"2024-01-02T03:04:05Z"`, "2024-01-02T03:04:05Z", false, true},
		{"numeric string", `"1700000000"`, "1700000000", false, true},
		{"empty string", `""`, "", false, false},
		{"null", `null`, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ts.Raw != tt.wantRaw || ts.Numeric != tt.wantNumeric || ts.Present != tt.wantPresent {
				t.Errorf("got %+v, want raw=%q numeric=%v present=%v", ts, tt.wantRaw, tt.wantNumeric, tt.wantPresent)
			}
		})
	}
}

func TestTrade_TimeFieldFallback(t *testing.T) {
	var trade Trade
	if err := json.Unmarshal([]byte(`{"createdAt": "2024-01-02T03:04:05Z"}`), &trade); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := trade.TimeField().String(); got != "2024-01-02T03:04:05Z" {
		t.Errorf("expected createdAt fallback, got %q", got)
	}

	var snake Trade
	if err := json.Unmarshal([]byte(`{"created_at": 1700000000}`), &snake); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := snake.TimeField().String(); got != "1700000000" {
		t.Errorf("expected created_at fallback, got %q", got)
	}
}

func TestTrade_MarshalRoundTrip(t *testing.T) {
	trade := Trade{
		Side:      "BUY",
		Price:     NewNumber(0.25),
		Size:      NewNumber(40),
		Timestamp: UnixTimestamp(1700000000),
	}

	data, err := json.Marshal(trade)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Trade
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Price.String() != "0.25" || decoded.Size.String() != "40" || decoded.Timestamp.String() != "1700000000" {
		t.Errorf("round trip changed values: %+v", decoded)
	}
	if decoded.CreatedAt.Present {
		t.Error("absent createdAt should stay absent")
	}
}
