package app

import (
	"time"

	"go.uber.org/zap"
)

// Heartbeat is the per-cycle health summary.
type Heartbeat struct {
	Loop      uint64    `json:"loop"`
	At        time.Time `json:"at"`
	NewBuys   int       `json:"new_buys"`
	Failing   []string  `json:"failing"`
	Addresses int       `json:"addresses"`
	NextIn    string    `json:"next_in"`
}

// recordHeartbeat logs the cycle summary and keeps it for /stats.
func (r *Runner) recordHeartbeat(result CycleResult) {
	hb := Heartbeat{
		Loop:      result.Loop,
		At:        r.clock.Now().UTC(),
		NewBuys:   result.NewBuys,
		Failing:   result.Failing,
		Addresses: result.Addresses,
		NextIn:    r.cfg.Monitor.PollInterval.String(),
	}

	r.heartbeatMu.Lock()
	r.lastHeartbeat = hb
	r.heartbeatMu.Unlock()

	fields := []zap.Field{
		zap.Uint64("loop", hb.Loop),
		zap.Int("newBuys", hb.NewBuys),
		zap.Int("failing", len(hb.Failing)),
		zap.Int("total", hb.Addresses),
		zap.Duration("nextIn", r.cfg.Monitor.PollInterval),
	}
	if len(hb.Failing) == 0 {
		r.clients.Logger.Info("heartbeat", fields...)
		return
	}

	short := make([]string, len(hb.Failing))
	for i, addr := range hb.Failing {
		short[i] = shortID(addr)
	}
	r.clients.Logger.Warn("heartbeat", append(fields, zap.Strings("failingAddresses", short))...)
}

// LastHeartbeat returns the most recent cycle summary.
func (r *Runner) LastHeartbeat() Heartbeat {
	r.heartbeatMu.RLock()
	defer r.heartbeatMu.RUnlock()
	return r.lastHeartbeat
}
