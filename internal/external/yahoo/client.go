package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/httputil"
	"github.com/wonny/bullscan/pkg/logger"
)

// Client fetches daily bars from the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Fetch implements contracts.SeriesSource. Prices are split/dividend adjusted.
func (c *Client) Fetch(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix())) // exclusive upper bound
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ProviderSymbol(symbol)), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	bars, err := resp.bars()
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	series, err := contracts.NewPriceSeries(symbol, bars)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  series.Len(),
	}).Debug("Fetched prices")
	return series, nil
}

// ProviderSymbol maps exchange tickers to Yahoo's form (BRK.B → BRK-B)
func ProviderSymbol(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(symbol)), ".", "-")
}
