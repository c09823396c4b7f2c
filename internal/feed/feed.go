// Package feed implements the clients for the two remote data sources: the
// central-bank daily quotes document and the marketplace price endpoint.
// Every failure mode is collapsed into ErrUnavailable or ErrMalformed so
// callers treat it as "try the next tier"; nothing propagates further.
package feed

import (
	"errors"
	"net/http"
)

var (
	// ErrUnavailable means the feed could not be reached or refused the
	// request. Always recoverable via the next fallback tier.
	ErrUnavailable = errors.New("feed unavailable")

	// ErrMalformed means the feed answered but the payload did not parse.
	// Treated identically to ErrUnavailable by callers.
	ErrMalformed = errors.New("malformed feed response")
)

// browserHeaders mimics a browser session; the marketplace endpoint
// rejects bare HTTP clients.
func browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
}
