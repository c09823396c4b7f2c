// Package cache owns the durable snapshot of the last known exchange rate
// and marketplace quotes, and the TTL policy deciding when those values
// are still trustworthy.
package cache

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
)

// DefaultRate is the last-resort exchange rate used when neither the feed
// nor the cache can produce one.
const DefaultRate = 2

// RateRecord is the persisted exchange rate. Timestamps are epoch seconds
// on the wire; fractional seconds are preserved.
type RateRecord struct {
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}

// QuoteRecord is one persisted marketplace quote, keyed in the snapshot by
// "<amount>_<CCY>".
type QuoteRecord struct {
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}

// Snapshot is the unit of durable persistence: one exchange rate and the
// set of time-stamped marketplace quotes.
type Snapshot struct {
	ExchangeRate RateRecord             `json:"exchange_rate"`
	SteamRates   map[string]QuoteRecord `json:"steam_rates"`
	LastUpdate   string                 `json:"last_update,omitempty"`
}

func defaultSnapshot() *Snapshot {
	return &Snapshot{
		ExchangeRate: RateRecord{Value: DefaultRate, Timestamp: 0},
		SteamRates:   make(map[string]QuoteRecord),
	}
}

// Store reads and writes the snapshot file. It never surfaces errors: a
// missing or corrupt file loads as the default snapshot and a failed write
// is logged, leaving the in-memory state authoritative.
type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load returns the persisted snapshot, or the default snapshot when the
// file is missing, unreadable, or structurally invalid. A structurally
// invalid snapshot is replaced wholesale, never partially trusted.
func (s *Store) Load() *Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("cache file not found, using defaults", zap.String("path", s.path))
		} else {
			s.logger.Error("failed to read cache file", zap.String("path", s.path), zap.Error(err))
		}
		return defaultSnapshot()
	}

	if !validStructure(data) {
		s.logger.Warn("cache file failed structural validation, using defaults",
			zap.String("path", s.path))
		return defaultSnapshot()
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("cache file did not parse, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return defaultSnapshot()
	}
	if snap.SteamRates == nil {
		snap.SteamRates = make(map[string]QuoteRecord)
	}

	s.logger.Info("cache loaded from file", zap.String("path", s.path))
	return &snap
}

// Save stamps the snapshot with the last-update time and writes it out.
// Write failures are logged, not returned.
func (s *Store) Save(snap *Snapshot) {
	snap.LastUpdate = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode cache snapshot", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("failed to write cache file", zap.String("path", s.path), zap.Error(err))
	}
}

// validStructure requires the exchange_rate object with both value and
// timestamp fields, plus the steam_rates key.
func validStructure(data []byte) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	if _, ok := raw["steam_rates"]; !ok {
		return false
	}
	rateRaw, ok := raw["exchange_rate"]
	if !ok {
		return false
	}
	var rate map[string]json.RawMessage
	if err := json.Unmarshal(rateRaw, &rate); err != nil {
		return false
	}
	if _, ok := rate["value"]; !ok {
		return false
	}
	if _, ok := rate["timestamp"]; !ok {
		return false
	}
	return true
}
