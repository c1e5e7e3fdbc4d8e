package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader for real-time stats
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsPushInterval is how often /ws pushes a fresh snapshot.
var statsPushInterval = 1 * time.Second

// MonitorStats is the /stats payload.
type MonitorStats struct {
	InstanceID string `json:"instance_id"`

	// Build info
	Build struct {
		Commit    string `json:"commit"`
		Time      string `json:"time,omitempty"`
		GoVersion string `json:"go_version"`
	} `json:"build"`

	// Service info
	StartTime string `json:"start_time"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_seconds"`

	Loops         uint64     `json:"loops"`
	PollInterval  string     `json:"poll_interval"`
	LastHeartbeat *Heartbeat `json:"last_heartbeat,omitempty"`

	// Address health
	Addresses        int            `json:"addresses"`
	FailingAddresses map[string]int `json:"failing_addresses"`
	SeenTrades       map[string]int `json:"seen_trades"`
	SeenTradesTotal  int            `json:"seen_trades_total"`
	PendingSeeds     int            `json:"pending_seeds"`

	Alerts AlertCounts `json:"alerts"`

	// Notification status
	Notifications struct {
		DiscordEnabled  bool `json:"discord_enabled"`
		TelegramEnabled bool `json:"telegram_enabled"`
	} `json:"notifications"`

	Runtime struct {
		Goroutines int    `json:"goroutines"`
		HeapAlloc  uint64 `json:"heap_alloc"` // bytes currently allocated on heap
		NumGC      uint32 `json:"num_gc"`
	} `json:"runtime"`
}

// GetStats returns a snapshot of the monitor state.
func (r *Runner) GetStats() MonitorStats {
	var stats MonitorStats
	now := r.clock.Now()

	stats.InstanceID = r.instanceID
	stats.Build.Commit = BuildCommit
	stats.Build.Time = BuildTime
	stats.Build.GoVersion = runtime.Version()

	if !r.startTime.IsZero() {
		stats.StartTime = r.startTime.UTC().Format(time.RFC3339)
		uptime := now.Sub(r.startTime)
		stats.Uptime = uptime.Round(time.Second).String()
		stats.UptimeSec = int64(uptime.Seconds())
	}

	stats.Loops = r.loops.Load()
	stats.PollInterval = r.cfg.Monitor.PollInterval.String()
	if hb := r.LastHeartbeat(); hb.Loop > 0 {
		stats.LastHeartbeat = &hb
	}

	addrs := r.policy.Addresses()
	stats.Addresses = len(addrs)
	stats.FailingAddresses = r.errors.Snapshot()
	stats.SeenTrades = make(map[string]int, len(addrs))
	for _, addr := range addrs {
		n := r.store.Size(addr)
		stats.SeenTrades[addr] = n
		stats.SeenTradesTotal += n
		if !r.isSeeded(addr) {
			stats.PendingSeeds++
		}
	}

	stats.Alerts = r.alerter.Counts()

	stats.Notifications.DiscordEnabled = r.clients.Discord != nil && r.clients.Discord.Enabled()
	stats.Notifications.TelegramEnabled = r.clients.Telegram != nil

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.Runtime.Goroutines = runtime.NumGoroutine()
	stats.Runtime.HeapAlloc = memStats.HeapAlloc
	stats.Runtime.NumGC = memStats.NumGC

	return stats
}

// statsHandler serves /health, /stats, /ws and the dashboard.
func (r *Runner) statsHandler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// JSON stats endpoint
	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		stats := r.GetStats()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(stats)
	})

	// WebSocket endpoint for real-time stats
	mux.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, req, nil)
		if err != nil {
			r.clients.Logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(statsPushInterval)
		defer ticker.Stop()

		for {
			if err := conn.WriteJSON(r.GetStats()); err != nil {
				return // Client disconnected
			}
			select {
			case <-req.Context().Done():
				return
			case <-ticker.C:
			}
		}
	})

	// HTML dashboard
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(dashboardHTML))
	})

	return mux
}

// startHealthServer starts an HTTP server for health checks and stats.
func (r *Runner) startHealthServer(port int) {
	r.healthServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r.statsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := r.healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.clients.Logger.Error("health server error", zap.Error(err))
		}
	}()
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>polywatch</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; background: #0d1117; color: #c9d1d9; margin: 24px; }
        h1 { font-size: 20px; }
        .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 12px; }
        .card { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px; }
        .label { font-size: 12px; color: #8b949e; }
        .value { font-size: 22px; margin-top: 4px; }
        .red { color: #f85149; }
        .green { color: #3fb950; }
        ul { padding-left: 18px; }
    </style>
</head>
<body>
    <h1>📈 polywatch <span id="status" class="label">connecting…</span></h1>
    <div class="grid">
        <div class="card"><div class="label">Loop</div><div class="value" id="loops">-</div></div>
        <div class="card"><div class="label">New buys (last loop)</div><div class="value" id="newBuys">-</div></div>
        <div class="card"><div class="label">Failing</div><div class="value" id="failing">-</div></div>
        <div class="card"><div class="label">Alerts sent</div><div class="value green" id="sent">-</div></div>
        <div class="card"><div class="label">Suppressed</div><div class="value" id="suppressed">-</div></div>
        <div class="card"><div class="label">Seen trades</div><div class="value" id="seen">-</div></div>
        <div class="card"><div class="label">Uptime</div><div class="value" id="uptime">-</div></div>
    </div>
    <h2 class="label">Failing addresses</h2>
    <ul id="failingList"></ul>
    <script>
        function connect() {
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(proto + location.host + '/ws');
            ws.onopen = () => { document.getElementById('status').textContent = 'live'; };
            ws.onclose = () => {
                document.getElementById('status').textContent = 'disconnected, retrying…';
                setTimeout(connect, 3000);
            };
            ws.onmessage = (ev) => {
                const s = JSON.parse(ev.data);
                const hb = s.last_heartbeat || {};
                const failing = Object.entries(s.failing_addresses || {});
                document.getElementById('loops').textContent = s.loops;
                document.getElementById('newBuys').textContent = hb.new_buys ?? '-';
                document.getElementById('failing').textContent = failing.length + '/' + s.addresses;
                document.getElementById('failing').className = 'value ' + (failing.length ? 'red' : 'green');
                document.getElementById('sent').textContent = s.alerts.sent;
                document.getElementById('suppressed').textContent = s.alerts.suppressed;
                document.getElementById('seen').textContent = s.seen_trades_total;
                document.getElementById('uptime').textContent = s.uptime || '-';
                document.getElementById('failingList').innerHTML = failing
                    .map(([addr, n]) => '<li>' + addr + ' (' + n + ')</li>').join('');
            };
        }
        connect();
    </script>
</body>
</html>
`
