package app

import (
	"polywatch/clients/polymarketapi"
	"slices"
	"sort"
	"sync"
	"time"
)

// SeedResult reports what seeding did with the BUYs on the first page.
type SeedResult struct {
	OldBuys    int // marked seen, never alerted
	RecentBuys int // left unseen so the next Update alerts on them
}

// addressState is the seen-set of one address.
type addressState struct {
	mu   sync.Mutex
	seen map[TradeKey]struct{}
}

// DedupStore remembers which trades have been processed per address.
// Entries are never evicted while the process runs. Calls for one address
// are serialized; different addresses proceed independently.
type DedupStore struct {
	mu     sync.RWMutex
	states map[string]*addressState
}

func NewDedupStore() *DedupStore {
	return &DedupStore{states: make(map[string]*addressState)}
}

// state returns the address state, creating it on first use.
func (s *DedupStore) state(address string) *addressState {
	s.mu.RLock()
	st, ok := s.states[address]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.states[address]; ok {
		return st
	}
	st = &addressState{seen: make(map[TradeKey]struct{})}
	s.states[address] = st
	return st
}

// Seed marks every trade on the startup page as seen, except BUYs no older
// than lookback. Those stay unseen so the next Update reports them.
func (s *DedupStore) Seed(address string, page []polymarketapi.Trade, lookback time.Duration, now time.Time) SeedResult {
	st := s.state(address)
	st.mu.Lock()
	defer st.mu.Unlock()

	var result SeedResult
	recent := make(map[TradeKey]struct{})
	for _, trade := range page {
		key := TradeKeyOf(trade)
		if IsBuy(trade) && AgeSeconds(trade, now) <= lookback.Seconds() {
			recent[key] = struct{}{}
			result.RecentBuys++
			continue
		}
		st.seen[key] = struct{}{}
		if IsBuy(trade) {
			result.OldBuys++
		}
	}

	// A recent buy may share its key with an older record on the same page.
	for key := range recent {
		delete(st.seen, key)
	}

	return result
}

// Update walks the page oldest first, marks every unseen trade as seen and
// returns the unseen BUYs in chronological order. The page is expected
// newest first, as the data API returns it.
func (s *DedupStore) Update(address string, page []polymarketapi.Trade) []polymarketapi.Trade {
	if len(page) == 0 {
		return nil
	}

	st := s.state(address)
	st.mu.Lock()
	defer st.mu.Unlock()

	var fresh []polymarketapi.Trade
	for _, trade := range chronological(page) {
		key := TradeKeyOf(trade)
		if _, ok := st.seen[key]; ok {
			continue
		}
		st.seen[key] = struct{}{}
		if IsBuy(trade) {
			fresh = append(fresh, trade)
		}
	}
	return fresh
}

// chronological returns a copy of a newest-first page ordered oldest first.
// Trades whose time cannot be parsed sort as the newest.
func chronological(page []polymarketapi.Trade) []polymarketapi.Trade {
	type timedTrade struct {
		trade polymarketapi.Trade
		at    time.Time
		ok    bool
	}

	items := make([]timedTrade, len(page))
	for i, trade := range page {
		at, ok := ParseTradeTime(trade.TimeField())
		items[len(page)-1-i] = timedTrade{trade: trade, at: at, ok: ok}
	}

	slices.SortStableFunc(items, func(a, b timedTrade) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	out := make([]polymarketapi.Trade, len(items))
	for i, it := range items {
		out[i] = it.trade
	}
	return out
}

// Seen reports whether the trade's identity is in the address's seen-set.
func (s *DedupStore) Seen(address string, trade polymarketapi.Trade) bool {
	s.mu.RLock()
	st, ok := s.states[address]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	_, seen := st.seen[TradeKeyOf(trade)]
	return seen
}

// Size returns the number of identities seen for an address.
func (s *DedupStore) Size(address string) int {
	s.mu.RLock()
	st, ok := s.states[address]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.seen)
}

// TotalSize returns the number of identities seen across all addresses.
func (s *DedupStore) TotalSize() int {
	total := 0
	for _, addr := range s.Addresses() {
		total += s.Size(addr)
	}
	return total
}

// Addresses returns the tracked addresses in sorted order.
func (s *DedupStore) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]string, 0, len(s.states))
	for addr := range s.states {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}
