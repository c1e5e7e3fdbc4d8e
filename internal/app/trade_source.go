package app

import (
	"context"
	"errors"
	"net"
	"net/url"
	"polywatch/clients/polymarketapi"

	"go.uber.org/zap"
)

// Fetch failure classes, used only for logging.
const (
	FetchHTTPError       = "http_error"
	FetchConnectionError = "connection_error"
	FetchTimeout         = "timeout"
	FetchUnknownError    = "unknown_error"
)

// TradeFetcher returns the most recent trades of a wallet, newest first.
type TradeFetcher interface {
	GetUserTrades(ctx context.Context, wallet string, limit int) ([]polymarketapi.Trade, error)
}

var _ TradeFetcher = (*polymarketapi.PolymarketApiClient)(nil)

// TradeSource fetches trade pages and turns every failure into an empty page.
type TradeSource struct {
	logger   *zap.Logger
	fetcher  TradeFetcher
	errors   *ErrorTracker
	pageSize int
}

func NewTradeSource(logger *zap.Logger, fetcher TradeFetcher, errs *ErrorTracker, pageSize int) *TradeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = polymarketapi.DefaultTradesPageSize
	}
	return &TradeSource{
		logger:   logger,
		fetcher:  fetcher,
		errors:   errs,
		pageSize: pageSize,
	}
}

// Fetch returns the latest page for an address. Failures are classified,
// logged with the consecutive failure count and reported as an empty page
// with ok set to false.
func (ts *TradeSource) Fetch(ctx context.Context, address string) (page []polymarketapi.Trade, ok bool) {
	trades, err := ts.fetcher.GetUserTrades(ctx, address, ts.pageSize)
	if err != nil {
		n := ts.errors.RecordFailure(address)
		kind := ClassifyFetchError(err)

		fields := []zap.Field{
			zap.String("address", shortID(address)),
			zap.String("kind", kind),
			zap.Int("consecutiveErrors", n),
			zap.Error(err),
		}
		var statusErr *polymarketapi.StatusError
		if errors.As(err, &statusErr) {
			fields = append(fields, zap.Int("status", statusErr.StatusCode))
		}
		ts.logger.Warn("trade fetch failed", fields...)
		return nil, false
	}

	if prev := ts.errors.RecordSuccess(address); prev > 0 {
		ts.logger.Info("trade fetch recovered",
			zap.String("address", shortID(address)),
			zap.Int("previousErrors", prev),
		)
	}
	return trades, true
}

// ClassifyFetchError maps a fetch error to one of the Fetch* classes.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *polymarketapi.StatusError
	if errors.As(err, &statusErr) {
		return FetchHTTPError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FetchConnectionError
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return FetchConnectionError
	}

	return FetchUnknownError
}
