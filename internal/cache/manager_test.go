package cache

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeProber struct {
	reachable bool
}

func (p *fakeProber) IsReachable(time.Duration) bool {
	return p.reachable
}

// newTestManager returns a manager with a movable clock starting at base.
func newTestManager(t *testing.T, prober *fakeProber) (*Manager, *time.Time) {
	t.Helper()
	base := time.Unix(1700000000, 0)
	now := base
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"), zap.NewNop())
	m := NewManager(store, prober, zap.NewNop())
	m.now = func() time.Time { return now }
	return m, &now
}

func TestGetRateFreshness(t *testing.T) {
	prober := &fakeProber{reachable: true}
	m, now := newTestManager(t, prober)
	m.SetRate(41.5)
	setAt := *now

	tests := []struct {
		name         string
		age          time.Duration
		allowOffline bool
		reachable    bool
		wantOK       bool
	}{
		{
			name:   "fresh under TTL",
			age:    599 * time.Second,
			wantOK: true,
		},
		{
			name:   "stale without offline extension",
			age:    600 * time.Second,
			wantOK: false,
		},
		{
			name:         "stale under offline ceiling with extension",
			age:          600 * time.Second,
			allowOffline: true,
			reachable:    true,
			wantOK:       true,
		},
		{
			name:         "just under offline ceiling",
			age:          86399 * time.Second,
			allowOffline: true,
			reachable:    true,
			wantOK:       true,
		},
		{
			name:         "past ceiling while online",
			age:          86400 * time.Second,
			allowOffline: true,
			reachable:    true,
			wantOK:       false,
		},
		{
			name:         "past ceiling but offline keeps serving",
			age:          86400 * time.Second,
			allowOffline: true,
			reachable:    false,
			wantOK:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*now = setAt.Add(tt.age)
			prober.reachable = tt.reachable
			rate, ok := m.GetRate(tt.allowOffline)
			if ok != tt.wantOK {
				t.Fatalf("GetRate(%v) ok = %v, want %v", tt.allowOffline, ok, tt.wantOK)
			}
			if ok && rate != 41.5 {
				t.Errorf("GetRate returned %v, want 41.5", rate)
			}
		})
	}
}

func TestGetRateEmptyCache(t *testing.T) {
	m, _ := newTestManager(t, &fakeProber{})
	if _, ok := m.GetRate(true); ok {
		t.Error("empty cache produced a rate")
	}
}

func TestQuoteTTLBoundary(t *testing.T) {
	m, now := newTestManager(t, &fakeProber{reachable: true})
	m.SetQuote("100_RUB", 94)
	setAt := *now

	*now = setAt.Add(179 * time.Second)
	if v, ok := m.GetQuote("100_RUB"); !ok || v != 94 {
		t.Fatalf("quote at +179s = %v, %v; want 94, true", v, ok)
	}

	*now = setAt.Add(181 * time.Second)
	if _, ok := m.GetQuote("100_RUB"); ok {
		t.Fatal("quote at +181s still served")
	}

	// The expired read evicted the entry, not just hid it.
	*now = setAt
	if _, ok := m.GetQuote("100_RUB"); ok {
		t.Fatal("expired quote was hidden, not evicted")
	}
}

func TestSetQuoteSweepsExpired(t *testing.T) {
	m, now := newTestManager(t, &fakeProber{reachable: true})
	m.SetQuote("100_RUB", 94)
	m.SetQuote("250_RUB", 234)
	setAt := *now

	*now = setAt.Add(200 * time.Second)
	m.SetQuote("500_RUB", 468)

	m.mu.Lock()
	_, oldKept := m.snap.SteamRates["100_RUB"]
	_, newKept := m.snap.SteamRates["500_RUB"]
	m.mu.Unlock()
	if oldKept {
		t.Error("write did not sweep expired quote entries")
	}
	if !newKept {
		t.Error("write dropped the fresh entry")
	}
}

func TestEvictionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path, zap.NewNop())
	base := time.Unix(1700000000, 0)
	now := base
	m := NewManager(store, &fakeProber{reachable: true}, zap.NewNop())
	m.now = func() time.Time { return now }

	m.SetQuote("100_RUB", 94)
	now = base.Add(181 * time.Second)
	m.GetQuote("100_RUB")

	reloaded := store.Load()
	if _, ok := reloaded.SteamRates["100_RUB"]; ok {
		t.Error("eviction was not persisted to disk")
	}
}

func TestReloadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(path, zap.NewNop())
	m := NewManager(store, &fakeProber{reachable: true}, zap.NewNop())
	m.SetRate(41.5)

	// Out-of-band change to the file.
	out := store.Load()
	out.ExchangeRate.Value = 50
	store.Save(out)

	if rate, _ := m.GetRate(false); rate != 41.5 {
		t.Fatalf("in-memory rate = %v before reload, want 41.5", rate)
	}
	m.ReloadFromDisk()
	if rate, _ := m.GetRate(false); rate != 50 {
		t.Errorf("rate after reload = %v, want 50", rate)
	}
}

func TestQuoteKey(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{100, "RUB", "100_RUB"},
		{100.5, "RUB", "100.5_RUB"},
		{0.37, "RUB", "0.37_RUB"},
	}
	for _, tt := range tests {
		if got := QuoteKey(tt.amount, tt.currency); got != tt.want {
			t.Errorf("QuoteKey(%v, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestAgeDescription(t *testing.T) {
	m, now := newTestManager(t, &fakeProber{reachable: true})

	if _, ok := m.AgeDescription(); ok {
		t.Fatal("age reported before any rate was cached")
	}

	m.SetRate(41.5)
	setAt := *now

	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "0s ago"},
		{42 * time.Second, "42s ago"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		*now = setAt.Add(tt.age)
		got, ok := m.AgeDescription()
		if !ok || got != tt.want {
			t.Errorf("AgeDescription at +%v = %q, %v; want %q", tt.age, got, ok, tt.want)
		}
	}
}
