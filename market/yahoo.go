package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// DirectSource queries the Yahoo Finance chart API for the latest close.
// It is fine for light use; for many tickers or tight polling the observer
// variant should front it so only one process hits the feed.
type DirectSource struct {
	Client  *http.Client
	BaseURL string
}

func NewDirectSource() *DirectSource {
	return &DirectSource{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: defaultChartURL,
	}
}

// yahooChart is the subset of the chart API response this source needs.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *DirectSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=1d", s.BaseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("build request for %s: %w", ticker, err)
	}
	req.Header.Set("User-Agent", "papertrader/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch %s: status %d: %w", ticker, resp.StatusCode, ErrPriceUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response for %s: %w", ticker, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("parse response for %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("fetch %s: %s: %w", ticker, chart.Chart.Error.Description, ErrPriceUnavailable)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return 0, fmt.Errorf("fetch %s: empty result: %w", ticker, ErrPriceUnavailable)
	}

	// Last non-null close of the session.
	closes := chart.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return *closes[i], nil
		}
	}
	return 0, fmt.Errorf("fetch %s: no close prices: %w", ticker, ErrPriceUnavailable)
}
