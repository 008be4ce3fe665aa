// Package market is a stateless gateway to the Alpha Vantage market-data API.
// No caching: every call goes straight to the provider. Alpha Vantage signals
// throttling with a 200 response carrying a "Note" or "Information" body
// instead of data; that is detected and surfaced as ErrRateLimited.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/metrics"
)

// Client calls the Alpha Vantage HTTP API with a bounded timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new market-data client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Quote is the current price snapshot for a ticker.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"current_price"`
	Open          float64 `json:"open_price"`
	High          float64 `json:"day_high"`
	Low           float64 `json:"day_low"`
	PreviousClose float64 `json:"previous_close"`
	Volume        int64   `json:"volume"`
}

// Chart is daily closing prices, ascending by date.
type Chart struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// Match is one search result for a company name.
type Match struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

type dailySeriesResponse struct {
	TimeSeriesDaily map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

type searchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// Quote fetches the current GLOBAL_QUOTE snapshot for a ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*Quote, error) {
	var resp globalQuoteResponse
	params := url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {ticker}}
	if err := c.get(ctx, "quote", params, &resp); err != nil {
		return nil, err
	}
	if resp.GlobalQuote.Price == "" {
		return nil, apperr.ErrTickerNotFound
	}

	q := &Quote{Ticker: ticker}
	var err error
	if q.Price, err = strconv.ParseFloat(resp.GlobalQuote.Price, 64); err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	q.Open, _ = strconv.ParseFloat(resp.GlobalQuote.Open, 64)
	q.High, _ = strconv.ParseFloat(resp.GlobalQuote.High, 64)
	q.Low, _ = strconv.ParseFloat(resp.GlobalQuote.Low, 64)
	q.PreviousClose, _ = strconv.ParseFloat(resp.GlobalQuote.PreviousClose, 64)
	q.Volume, _ = strconv.ParseInt(resp.GlobalQuote.Volume, 10, 64)
	return q, nil
}

// Daily fetches TIME_SERIES_DAILY closing prices. outputSize is "compact"
// (~100 trading days) or "full".
func (c *Client) Daily(ctx context.Context, ticker, outputSize string) (*Chart, error) {
	if outputSize != "full" {
		outputSize = "compact"
	}
	var resp dailySeriesResponse
	params := url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {ticker},
		"outputsize": {outputSize},
	}
	if err := c.get(ctx, "chart", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.TimeSeriesDaily) == 0 {
		return nil, apperr.ErrTickerNotFound
	}

	dates := make([]string, 0, len(resp.TimeSeriesDaily))
	for date := range resp.TimeSeriesDaily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	chart := &Chart{Dates: dates, Prices: make([]float64, 0, len(dates))}
	for _, date := range dates {
		price, err := strconv.ParseFloat(resp.TimeSeriesDaily[date].Close, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse close price for %s: %w", date, err)
		}
		chart.Prices = append(chart.Prices, price)
	}
	return chart, nil
}

// Search looks up tickers matching a company name via SYMBOL_SEARCH.
func (c *Client) Search(ctx context.Context, keywords string) ([]Match, error) {
	var resp searchResponse
	params := url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {keywords}}
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		matches = append(matches, Match{Symbol: m.Symbol, Name: m.Name})
	}
	return matches, nil
}

// get performs one provider call and decodes the payload into out. A
// throttling body or a 429 maps to ErrRateLimited, transport and 5xx failures
// map to ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, function string, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "error").Inc()
		return apperr.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "rate_limited").Inc()
		return apperr.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "error").Inc()
		return apperr.ErrUpstreamUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "error").Inc()
		return apperr.ErrUpstreamUnavailable
	}

	// Throttling and bad-symbol replies come back as 200 with a message body.
	var envelope struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "error").Inc()
		return apperr.ErrUpstreamUnavailable
	}
	if envelope.Note != "" || envelope.Information != "" {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "rate_limited").Inc()
		return apperr.ErrRateLimited
	}
	if envelope.ErrorMessage != "" {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "ok").Inc()
		return apperr.ErrTickerNotFound
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(function, "error").Inc()
		return apperr.ErrUpstreamUnavailable
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(function, "ok").Inc()
	return nil
}
