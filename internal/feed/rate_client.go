package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RateClient fetches the UAH→RUB cross rate from the daily quotes document.
type RateClient struct {
	url      string
	currency string
	client   *http.Client
	logger   *zap.Logger
}

func NewRateClient(url string, timeout time.Duration, logger *zap.Logger) *RateClient {
	return &RateClient{
		url:      url,
		currency: "UAH",
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// FetchRate performs one bounded-timeout request and returns the rate as
// RUB per 1 UAH, already normalized by the quote's nominal unit count.
func (c *RateClient) FetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	browserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("rate feed request failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("rate feed returned non-OK status", zap.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc struct {
		Valute map[string]struct {
			Value   float64 `json:"Value"`
			Nominal float64 `json:"Nominal"`
		} `json:"Valute"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		c.logger.Warn("rate feed payload did not parse", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	quote, ok := doc.Valute[c.currency]
	if !ok || quote.Nominal <= 0 || quote.Value <= 0 {
		c.logger.Warn("rate feed payload missing currency quote",
			zap.String("currency", c.currency))
		return 0, fmt.Errorf("%w: no usable %s quote", ErrMalformed, c.currency)
	}

	return quote.Value / quote.Nominal, nil
}
