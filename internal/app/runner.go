package app

import (
	"context"
	"net/http"
	clts "polywatch/clients"
	"polywatch/clients/notifier"
	"polywatch/clients/polymarketapi"
	"polywatch/config"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Build info - populated from embedded VCS info at init time
var (
	BuildCommit = "dev"
	BuildTime   = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					BuildCommit = setting.Value
				}
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	}
}

// CycleResult summarizes one poll of every address.
type CycleResult struct {
	Loop      uint64
	NewBuys   int
	Failing   []string
	Addresses int
}

// Runner owns the monitor state and drives the poll loop.
type Runner struct {
	clients    *clts.Clients
	cfg        *config.Config
	clock      Clock
	instanceID string

	store   *DedupStore
	errors  *ErrorTracker
	source  *TradeSource
	policy  *ThresholdPolicy
	alerter *Alerter

	// Addresses whose first page has been seeded. An address whose startup
	// fetch failed is seeded on its first successful fetch instead.
	seededMu sync.Mutex
	seeded   map[string]bool

	loops         atomic.Uint64
	heartbeatMu   sync.RWMutex
	lastHeartbeat Heartbeat

	healthServer *http.Server
	startTime    time.Time
}

func NewRunner(clients *clts.Clients, cfg *config.Config) *Runner {
	r := &Runner{
		clients:    clients,
		cfg:        cfg.Clone(),
		clock:      realClock{},
		instanceID: uuid.NewString(),
		store:      NewDedupStore(),
		errors:     NewErrorTracker(),
		seeded:     make(map[string]bool),
	}

	r.source = NewTradeSource(clients.Logger, clients.Polymarket, r.errors, cfg.Monitor.PageSize)
	r.policy = NewThresholdPolicy(
		cfg.Addresses.LargeOnly,
		cfg.Addresses.AllTrades,
		decimal.NewFromFloat(cfg.Monitor.LargeTradeMin),
		decimal.NewFromFloat(cfg.Monitor.AllTradeMin),
	)
	r.alerter = NewAlerter(clients.Logger, clients.Notifier, func() time.Time { return r.clock.Now() })
	return r
}

// SetClock replaces the wall clock, for tests.
func (r *Runner) SetClock(c Clock) {
	r.clock = c
}

// InstanceID identifies this process in logs and stats.
func (r *Runner) InstanceID() string {
	return r.instanceID
}

func (r *Runner) Run(ctx context.Context) error {
	r.startTime = r.clock.Now()
	logger := r.clients.Logger.With(zap.String("instance", shortID(r.instanceID)))

	logger.Info("starting trade monitor, BUY orders only",
		zap.Int("addresses", len(r.policy.Addresses())),
		zap.String("largeMin", notifier.FormatUSD(r.policy.largeMin)),
		zap.String("allMin", notifier.FormatUSD(r.policy.allMin)),
		zap.Duration("pollInterval", r.cfg.Monitor.PollInterval),
		zap.Duration("seedLookback", r.cfg.Monitor.SeedLookback),
		zap.Int("fetchConcurrency", r.concurrency()),
	)

	// Start health check server if enabled
	if r.cfg.HealthServer.Enabled {
		r.startHealthServer(r.cfg.HealthServer.Port)
		logger.Info("health server started", zap.Int("port", r.cfg.HealthServer.Port))
	}

	r.Seed(ctx)
	logger.Info("monitoring live BUY orders")

	for ctx.Err() == nil {
		r.RunCycle(ctx)
		if err := r.clock.Sleep(ctx, r.cfg.Monitor.PollInterval); err != nil {
			break
		}
	}

	logger.Info("runner shutting down", zap.Uint64("loops", r.loops.Load()))

	if r.clients.Notifier != nil {
		_ = r.clients.Notifier.Close()
	}

	// Shutdown health server
	if r.healthServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = r.healthServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	return nil
}

// Seed fetches every address once and marks its history as seen. Recent
// buys inside the lookback window are left unseen so the first cycle
// alerts on them.
func (r *Runner) Seed(ctx context.Context) {
	addrs := r.policy.Addresses()
	r.clients.Logger.Info("seeding addresses",
		zap.Int("addresses", len(addrs)),
		zap.Duration("lookback", r.cfg.Monitor.SeedLookback),
	)

	r.forEachAddress(ctx, addrs, func(ctx context.Context, addr string) {
		page, ok := r.source.Fetch(ctx, addr)
		if !ok {
			r.clients.Logger.Warn("seed fetch failed, will seed on first successful poll",
				zap.String("address", shortID(addr)),
			)
			return
		}
		r.seedAddress(addr, page)
	})

	r.clients.Logger.Info("seed complete", zap.Int("seenTrades", r.store.TotalSize()))
}

func (r *Runner) seedAddress(addr string, page []polymarketapi.Trade) {
	res := r.store.Seed(addr, page, r.cfg.Monitor.SeedLookback, r.clock.Now())

	r.seededMu.Lock()
	r.seeded[addr] = true
	r.seededMu.Unlock()

	r.clients.Logger.Info("seeded address",
		zap.String("address", shortID(addr)),
		zap.Int("oldBuysSkipped", res.OldBuys),
		zap.Int("recentBuysWillAlert", res.RecentBuys),
	)
}

func (r *Runner) isSeeded(addr string) bool {
	r.seededMu.Lock()
	defer r.seededMu.Unlock()
	return r.seeded[addr]
}

// RunCycle polls every address once, alerts on new buys and logs the
// heartbeat.
func (r *Runner) RunCycle(ctx context.Context) CycleResult {
	loop := r.loops.Add(1)
	addrs := r.policy.Addresses()

	var newBuys atomic.Int64
	r.forEachAddress(ctx, addrs, func(ctx context.Context, addr string) {
		newBuys.Add(int64(r.pollAddress(ctx, addr)))
	})

	result := CycleResult{
		Loop:      loop,
		NewBuys:   int(newBuys.Load()),
		Failing:   r.errors.Failing(),
		Addresses: len(addrs),
	}
	r.recordHeartbeat(result)
	return result
}

// pollAddress handles one address and returns how many new buys it found.
func (r *Runner) pollAddress(ctx context.Context, addr string) int {
	page, ok := r.source.Fetch(ctx, addr)
	if !ok {
		return 0
	}
	if !r.isSeeded(addr) {
		r.seedAddress(addr, page)
	}

	fresh := r.store.Update(addr, page)
	if len(fresh) == 0 {
		return 0
	}

	minValue := r.policy.MinValueFor(addr)
	for _, trade := range fresh {
		r.alerter.Notify(ctx, trade, addr, minValue)
	}
	return len(fresh)
}

// forEachAddress runs fn for every address with at most the configured
// number of addresses in flight. Each address is handled by one goroutine.
func (r *Runner) forEachAddress(ctx context.Context, addrs []string, fn func(context.Context, string)) {
	var g errgroup.Group
	g.SetLimit(r.concurrency())
	for _, addr := range addrs {
		if ctx.Err() != nil {
			break
		}
		addr := addr
		g.Go(func() error {
			fn(ctx, addr)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) concurrency() int {
	if r.cfg.Monitor.FetchConcurrency < 1 {
		return 1
	}
	return r.cfg.Monitor.FetchConcurrency
}
