package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RateSourceResolved counts how each Initialize resolved the active
	// rate (api, cache, default) plus manual overrides.
	RateSourceResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "currency_rate_source_total",
		Help: "Rate acquisitions by authoritative source",
	}, []string{"source"})

	// PriceTierUsed counts which tier priced a marketplace request.
	PriceTierUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steam_price_tier_total",
		Help: "Marketplace pricing requests by serving tier (cache, live, fallback)",
	}, []string{"tier"})

	// FeedErrors counts absorbed feed failures by feed name.
	FeedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_errors_total",
		Help: "Feed failures absorbed by the fallback pipeline",
	}, []string{"feed"})

	// Conversions counts completed currency conversions by direction.
	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "currency_conversions_total",
		Help: "Completed conversions by direction",
	}, []string{"direction"})

	// QuoteEvictions counts expired price-quote cache entries removed.
	QuoteEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steam_quote_evictions_total",
		Help: "Expired marketplace quote entries evicted from the cache",
	})
)
