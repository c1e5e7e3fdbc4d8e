package app

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ThresholdPolicy maps an address to the minimum notional that alerts.
// Addresses in the all-trades group use the low threshold even when they
// also appear in the large-only group.
type ThresholdPolicy struct {
	allTrades map[string]struct{}
	order     []string

	largeMin decimal.Decimal
	allMin   decimal.Decimal
}

func NewThresholdPolicy(largeOnly, allTrades []string, largeMin, allMin decimal.Decimal) *ThresholdPolicy {
	p := &ThresholdPolicy{
		allTrades: make(map[string]struct{}, len(allTrades)),
		largeMin:  largeMin,
		allMin:    allMin,
	}

	seen := make(map[string]struct{})
	add := func(addr string) string {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			return ""
		}
		if _, ok := seen[addr]; !ok {
			seen[addr] = struct{}{}
			p.order = append(p.order, addr)
		}
		return addr
	}

	for _, addr := range largeOnly {
		add(addr)
	}
	for _, addr := range allTrades {
		if a := add(addr); a != "" {
			p.allTrades[a] = struct{}{}
		}
	}
	return p
}

// MinValueFor returns the alert threshold for an address.
func (p *ThresholdPolicy) MinValueFor(address string) decimal.Decimal {
	if _, ok := p.allTrades[strings.ToLower(strings.TrimSpace(address))]; ok {
		return p.allMin
	}
	return p.largeMin
}

// Addresses returns every monitored address once, large-only group first.
func (p *ThresholdPolicy) Addresses() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}
