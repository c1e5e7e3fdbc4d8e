package app

import (
	"context"
	"polywatch/clients"
	"polywatch/clients/discord"
	"polywatch/clients/notifier"
	"polywatch/clients/polymarketapi"
	"polywatch/config"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MockClock is a manually advanced Clock. Sleep advances the clock and
// cancels the run after a fixed number of sleeps.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// StopAfter cancels via Cancel once this many sleeps have happened.
	StopAfter int
	Cancel    context.CancelFunc
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	stop := c.StopAfter > 0 && len(c.sleeps) >= c.StopAfter
	c.mu.Unlock()

	if stop && c.Cancel != nil {
		c.Cancel()
	}
	return ctx.Err()
}

func (c *MockClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// MockFetcher serves canned pages per wallet.
type MockFetcher struct {
	mu     sync.Mutex
	pages  map[string][]polymarketapi.Trade
	errs   map[string]error
	calls  map[string]int
	limits []int
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		pages: make(map[string][]polymarketapi.Trade),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (m *MockFetcher) SetPage(wallet string, trades ...polymarketapi.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[wallet] = trades
	delete(m.errs, wallet)
}

func (m *MockFetcher) SetError(wallet string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[wallet] = err
}

func (m *MockFetcher) Calls(wallet string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[wallet]
}

func (m *MockFetcher) GetUserTrades(ctx context.Context, wallet string, limit int) ([]polymarketapi.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[wallet]++
	m.limits = append(m.limits, limit)
	if err := m.errs[wallet]; err != nil {
		return nil, err
	}
	return m.pages[wallet], nil
}

// MockNotifier records every alert it receives.
type MockNotifier struct {
	mu      sync.Mutex
	alerts  []notifier.TradeAlert
	sendErr error
	closed  bool
}

func (m *MockNotifier) SendTradeAlert(ctx context.Context, alert notifier.TradeAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
	return m.sendErr
}

func (m *MockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockNotifier) Alerts() []notifier.TradeAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifier.TradeAlert(nil), m.alerts...)
}

// testNow is the fixed wall-clock time used across tests.
var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// buyAt builds a BUY trade that happened age before testNow.
func buyAt(age time.Duration, size, price float64) polymarketapi.Trade {
	return tradeAt("BUY", age, size, price)
}

func tradeAt(side string, age time.Duration, size, price float64) polymarketapi.Trade {
	return polymarketapi.Trade{
		Side:      side,
		Size:      polymarketapi.NewNumber(size),
		Price:     polymarketapi.NewNumber(price),
		Timestamp: polymarketapi.UnixTimestamp(testNow.Add(-age).Unix()),
		Title:     "Test Market",
		EventSlug: "test-market",
		Name:      "trader",
	}
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Addresses.LargeOnly = []string{largeAddr}
	cfg.Addresses.AllTrades = []string{allAddr}
	return cfg
}

const (
	largeAddr = "0x1111111111111111111111111111111111111111"
	allAddr   = "0x2222222222222222222222222222222222222222"
)

// newTestRunner wires a Runner to a mock fetcher, notifier and clock.
func newTestRunner(cfg *config.Config) (*Runner, *MockFetcher, *MockNotifier, *MockClock) {
	fetcher := NewMockFetcher()
	notif := &MockNotifier{}
	clock := NewMockClock(testNow)

	clts := &clients.Clients{
		Logger:   zap.NewNop(),
		Discord:  discord.NewWebhookClient(zap.NewNop(), cfg),
		Notifier: notif,
	}

	r := NewRunner(clts, cfg)
	r.SetClock(clock)
	r.source = NewTradeSource(zap.NewNop(), fetcher, r.errors, cfg.Monitor.PageSize)
	return r, fetcher, notif, clock
}
