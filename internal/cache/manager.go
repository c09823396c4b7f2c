package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/WhoSowSee/CurrencyConverter/internal/metrics"
	"github.com/WhoSowSee/CurrencyConverter/internal/netcheck"
)

// TTL policy. A rate is preferred fresh, but a stale rate beats the static
// default whenever the staleness is plausibly due to being offline.
const (
	// RateTTL is how long a fetched exchange rate counts as fresh.
	RateTTL = 10 * time.Minute
	// OfflineRateTTL is the long ceiling under which a stale rate is still
	// served when offline extension is requested.
	OfflineRateTTL = 24 * time.Hour
	// QuoteTTL is how long a marketplace quote stays valid.
	QuoteTTL = 3 * time.Minute

	// managerProbeTimeout bounds the connectivity check used by the
	// stale-but-offline extension rule.
	managerProbeTimeout = time.Second
)

// Manager is the sole owner of the in-memory snapshot and of all cache
// reads and writes. Writes go through to the store immediately.
type Manager struct {
	store  *Store
	prober netcheck.Prober
	logger *zap.Logger

	mu   sync.Mutex
	snap *Snapshot

	now func() time.Time
}

func NewManager(store *Store, prober netcheck.Prober, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		prober: prober,
		logger: logger,
		snap:   store.Load(),
		now:    time.Now,
	}
}

// GetRate returns the cached exchange rate when it is still acceptable.
// A fresh rate (younger than RateTTL) is always returned. With
// allowOffline set, a stale rate is still returned when its age is under
// OfflineRateTTL, or when connectivity is currently absent and nothing
// better can exist.
func (m *Manager) GetRate(allowOffline bool) (float64, bool) {
	m.mu.Lock()
	rec := m.snap.ExchangeRate
	m.mu.Unlock()

	if rec.Timestamp == 0 || rec.Value == 0 {
		return 0, false
	}

	age := m.elapsed(rec.Timestamp)
	if age < RateTTL {
		return rec.Value, true
	}
	if allowOffline && age < OfflineRateTTL {
		return rec.Value, true
	}
	if allowOffline && !m.prober.IsReachable(managerProbeTimeout) {
		return rec.Value, true
	}
	return 0, false
}

// SetRate overwrites the cached rate and persists immediately.
func (m *Manager) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.ExchangeRate = RateRecord{
		Value:     rate,
		Timestamp: m.nowEpoch(),
	}
	m.store.Save(m.snap)
}

// GetQuote returns the cached marketplace quote for the key while it is
// inside QuoteTTL. An expired entry is evicted on the spot and the
// eviction persisted.
func (m *Manager) GetQuote(key string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.snap.SteamRates[key]
	if !ok {
		return 0, false
	}
	if m.elapsed(rec.Timestamp) < QuoteTTL {
		return rec.Value, true
	}

	delete(m.snap.SteamRates, key)
	metrics.QuoteEvictions.Inc()
	m.store.Save(m.snap)
	return 0, false
}

// SetQuote inserts or overwrites the entry, sweeps every expired quote
// (cleanup is amortized onto writes, not a background task), and persists.
func (m *Manager) SetQuote(key string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.SteamRates[key] = QuoteRecord{
		Value:     value,
		Timestamp: m.nowEpoch(),
	}
	for k, rec := range m.snap.SteamRates {
		if m.elapsed(rec.Timestamp) >= QuoteTTL {
			delete(m.snap.SteamRates, k)
			metrics.QuoteEvictions.Inc()
		}
	}
	m.store.Save(m.snap)
}

// ReloadFromDisk discards in-memory state and reloads the snapshot,
// picking up out-of-band changes to the cache file.
func (m *Manager) ReloadFromDisk() {
	m.logger.Info("reloading cache from disk")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = m.store.Load()
}

// QuoteKey builds the snapshot key for an (amount, currency) quote.
func QuoteKey(amount float64, currency string) string {
	return fmt.Sprintf("%s_%s", strconv.FormatFloat(amount, 'f', -1, 64), currency)
}

// AgeDescription buckets the age of the cached rate into a short
// humanized string. The second return is false when no rate was ever
// cached.
func (m *Manager) AgeDescription() (string, bool) {
	m.mu.Lock()
	ts := m.snap.ExchangeRate.Timestamp
	m.mu.Unlock()

	if ts == 0 {
		return "", false
	}

	seconds := m.elapsed(ts).Seconds()
	switch {
	case seconds < 1:
		return "0s ago", true
	case seconds < 60:
		return fmt.Sprintf("%ds ago", int(seconds)), true
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", int(seconds/60)), true
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", int(seconds/3600)), true
	default:
		return fmt.Sprintf("%dd ago", int(seconds/86400)), true
	}
}

func (m *Manager) nowEpoch() float64 {
	return float64(m.now().UnixNano()) / float64(time.Second)
}

func (m *Manager) elapsed(ts float64) time.Duration {
	return time.Duration((m.nowEpoch() - ts) * float64(time.Second))
}
