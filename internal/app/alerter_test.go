package app

import (
	"context"
	"errors"
	"polywatch/clients/polymarketapi"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAlerter_SuppressesBelowThreshold(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notif := &MockNotifier{}
	alerter := NewAlerter(zap.New(core), notif, nil)

	trade := buyAt(time.Second, 100, 0.5) // $50
	if got := alerter.Notify(context.Background(), trade, largeAddr, decimal.NewFromInt(100)); got != Suppressed {
		t.Errorf("expected Suppressed, got %s", got)
	}
	if len(notif.Alerts()) != 0 {
		t.Error("nothing should be sent below threshold")
	}
	if logs.FilterMessage("alert suppressed below threshold").Len() != 1 {
		t.Error("expected a suppression log")
	}
	if c := alerter.Counts(); c.Suppressed != 1 || c.Sent != 0 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestAlerter_SendsAtThreshold(t *testing.T) {
	notif := &MockNotifier{}
	alerter := NewAlerter(zap.NewNop(), notif, nil)

	trade := buyAt(time.Second, 200, 0.5) // exactly $100
	if got := alerter.Notify(context.Background(), trade, largeAddr, decimal.NewFromInt(100)); got != Sent {
		t.Errorf("expected Sent, got %s", got)
	}

	alerts := notif.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	alert := alerts[0]
	if !alert.Notional.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected notional: %s", alert.Notional)
	}
	if alert.TraderName != "trader" || alert.Side != "BUY" {
		t.Errorf("unexpected trader/side: %s %s", alert.TraderName, alert.Side)
	}
	if alert.MarketURL != "https://polymarket.com/event/test-market" {
		t.Errorf("unexpected market url: %s", alert.MarketURL)
	}
	if alert.WalletURL != "https://polymarket.com/profile/"+largeAddr {
		t.Errorf("unexpected wallet url: %s", alert.WalletURL)
	}
	if !alert.Timestamp.Equal(testNow.Add(-time.Second)) || alert.Timestamp.Location() != time.UTC {
		t.Errorf("unexpected timestamp: %v", alert.Timestamp)
	}
}

func TestAlerter_Fallbacks(t *testing.T) {
	notif := &MockNotifier{}
	alerter := NewAlerter(zap.NewNop(), notif, func() time.Time { return testNow })

	trade := polymarketapi.Trade{
		Side:      "buy",
		Size:      polymarketapi.NewNumber(10),
		Price:     polymarketapi.NewNumber(1),
		Pseudonym: "Quiet-Owl",
		Market:    "fallback market",
		Slug:      "slug-only",
	}
	alerter.Notify(context.Background(), trade, largeAddr, decimal.Zero)

	alert := notif.Alerts()[0]
	if alert.TraderName != "Quiet-Owl" {
		t.Errorf("expected pseudonym fallback, got %s", alert.TraderName)
	}
	if alert.MarketTitle != "fallback market" {
		t.Errorf("expected market fallback, got %s", alert.MarketTitle)
	}
	if alert.MarketURL != "https://polymarket.com/event/slug-only" {
		t.Errorf("expected slug fallback, got %s", alert.MarketURL)
	}
	if !alert.Timestamp.Equal(testNow) {
		t.Errorf("expected clock time for missing timestamp, got %v", alert.Timestamp)
	}

	bare := polymarketapi.Trade{Side: "BUY", Size: polymarketapi.NewNumber(1), Price: polymarketapi.NewNumber(1)}
	alerter.Notify(context.Background(), bare, largeAddr, decimal.Zero)

	alert = notif.Alerts()[1]
	if alert.TraderName != "0x1111…1111" {
		t.Errorf("expected short address fallback, got %s", alert.TraderName)
	}
	if alert.MarketTitle != "?" || alert.MarketURL != "" {
		t.Errorf("expected placeholder market, got %q %q", alert.MarketTitle, alert.MarketURL)
	}
}

func TestAlerter_MalformedValueIsZero(t *testing.T) {
	notif := &MockNotifier{}
	alerter := NewAlerter(zap.NewNop(), notif, nil)

	trade := buyAt(time.Second, 1, 1)
	trade.Size = polymarketapi.Number{Raw: "lots"}

	if got := alerter.Notify(context.Background(), trade, largeAddr, decimal.NewFromInt(1)); got != Suppressed {
		t.Errorf("expected malformed size to suppress, got %s", got)
	}
}

func TestAlerter_DeliveryFailureSwallowed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notif := &MockNotifier{sendErr: errors.New("webhook returned 500")}
	alerter := NewAlerter(zap.New(core), notif, nil)

	if got := alerter.Notify(context.Background(), buyAt(time.Second, 1000, 1), largeAddr, decimal.NewFromInt(100)); got != Sent {
		t.Errorf("expected Sent despite delivery failure, got %s", got)
	}
	if logs.FilterMessage("alert delivery failed").Len() != 1 {
		t.Error("expected delivery failure to be logged")
	}
	if c := alerter.Counts(); c.Failed != 1 || c.Sent != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestTradeValue(t *testing.T) {
	trade := polymarketapi.Trade{
		Size:  polymarketapi.NewNumber(1234.5),
		Price: polymarketapi.NewNumber(0.1),
	}
	if got := TradeValue(trade); !got.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("TradeValue = %s, want 123.45", got)
	}
}
