package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WhoSowSee/CurrencyConverter/internal/netcheck"
)

// PriceClient fetches the marketplace's quoted top-up price for a given
// amount. The quote is what the marketplace actually credits; the caller
// derives the commission from it.
type PriceClient struct {
	baseURL      string
	partnerID    string
	prober       netcheck.Prober
	probeTimeout time.Duration
	client       *http.Client
	logger       *zap.Logger
	now          func() time.Time
}

func NewPriceClient(
	baseURL, partnerID string,
	timeout, probeTimeout time.Duration,
	prober netcheck.Prober,
	logger *zap.Logger,
) *PriceClient {
	return &PriceClient{
		baseURL:      baseURL,
		partnerID:    partnerID,
		prober:       prober,
		probeTimeout: probeTimeout,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
		now:          time.Now,
	}
}

// FetchQuote returns the marketplace quote for amount in the given
// currency. It skips the request entirely when the prober reports no
// connectivity, because the endpoint would only time out.
func (c *PriceClient) FetchQuote(ctx context.Context, amount float64, currency string) (float64, error) {
	if !c.prober.IsReachable(c.probeTimeout) {
		c.logger.Info("skipping price feed request: no connectivity")
		return 0, fmt.Errorf("%w: offline", ErrUnavailable)
	}

	params := url.Values{}
	params.Set("p", c.partnerID)
	params.Set("a", localeDecimal(amount))
	params.Set("c", currency)
	params.Set("x", "<response></response>")
	params.Set("rnd", strconv.FormatInt(c.now().Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	browserHeaders(req)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("price feed request failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("price feed returned non-OK status", zap.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var payload struct {
		Err json.RawMessage `json:"err"`
		Cnt json.RawMessage `json:"cnt"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("price feed payload did not parse", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !errCodeOK(payload.Err) {
		c.logger.Warn("price feed reported an error code",
			zap.String("err", string(payload.Err)))
		return 0, fmt.Errorf("%w: error code %s", ErrUnavailable, payload.Err)
	}

	quote, err := parseQuote(payload.Cnt)
	if err != nil {
		c.logger.Warn("price feed quote field unusable", zap.Error(err))
		return 0, err
	}

	return quote, nil
}

// errCodeOK accepts an absent, null, zero, or "0" error code.
func errCodeOK(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return true
	case bytes.Equal(raw, []byte(`"0"`)), bytes.Equal(raw, []byte("0")):
		return true
	}
	return false
}

// parseQuote accepts the quote either as a JSON number or as a
// locale-formatted string with a comma decimal separator.
func parseQuote(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: quote field absent", ErrUnavailable)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: quote %q", ErrMalformed, s)
		}
		return v, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// localeDecimal renders the amount with the comma decimal separator the
// endpoint expects.
func localeDecimal(amount float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(amount, 'f', -1, 64), ".", ",")
}
