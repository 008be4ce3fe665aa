package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key")
}

func TestClient_Quote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"02. open": "228.50",
				"03. high": "231.00",
				"04. low": "227.10",
				"05. price": "230.25",
				"06. volume": "44321000",
				"08. previous close": "229.00"
			}
		}`))
	})

	quote, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Ticker)
	assert.Equal(t, 230.25, quote.Price)
	assert.Equal(t, 228.50, quote.Open)
	assert.Equal(t, 231.00, quote.High)
	assert.Equal(t, 227.10, quote.Low)
	assert.Equal(t, 229.00, quote.PreviousClose)
	assert.Equal(t, int64(44321000), quote.Volume)
}

func TestClient_Quote_UnknownTicker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Alpha Vantage sends an empty quote object for unknown symbols
		_, _ = w.Write([]byte(`{"Global Quote": {}}`))
	})

	_, err := c.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperr.ErrTickerNotFound)
}

func TestClient_RateLimit(t *testing.T) {
	t.Run("NoteBody", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
		})
		_, err := c.Quote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperr.ErrRateLimited)
	})

	t.Run("InformationBody", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Information": "rate limit reached"}`))
		})
		_, err := c.Search(context.Background(), "apple")
		assert.ErrorIs(t, err, apperr.ErrRateLimited)
	})

	t.Run("Status429", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := c.Quote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperr.ErrRateLimited)
	})
}

func TestClient_Unavailable(t *testing.T) {
	t.Run("ServerError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := c.Quote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "test-key")
		_, err := c.Quote(context.Background(), "AAPL")
		assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	})
}

func TestClient_Daily(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
		_, _ = w.Write([]byte(`{
			"Time Series (Daily)": {
				"2026-08-28": {"4. close": "230.25"},
				"2026-08-26": {"4. close": "227.80"},
				"2026-08-27": {"4. close": "229.00"}
			}
		}`))
	})

	chart, err := c.Daily(context.Background(), "AAPL", "compact")
	require.NoError(t, err)
	// Ascending by date regardless of map order
	assert.Equal(t, []string{"2026-08-26", "2026-08-27", "2026-08-28"}, chart.Dates)
	assert.Equal(t, []float64{227.80, 229.00, 230.25}, chart.Prices)
}

func TestClient_Daily_FullOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		_, _ = w.Write([]byte(`{"Time Series (Daily)": {"2026-08-28": {"4. close": "1.00"}}}`))
	})

	_, err := c.Daily(context.Background(), "AAPL", "full")
	require.NoError(t, err)
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SYMBOL_SEARCH", r.URL.Query().Get("function"))
		assert.Equal(t, "apple", r.URL.Query().Get("keywords"))
		_, _ = w.Write([]byte(`{
			"bestMatches": [
				{"1. symbol": "AAPL", "2. name": "Apple Inc"},
				{"1. symbol": "APLE", "2. name": "Apple Hospitality REIT Inc"}
			]
		}`))
	})

	matches, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Symbol: "AAPL", Name: "Apple Inc"}, matches[0])
}
