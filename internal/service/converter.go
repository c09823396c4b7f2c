// Package service implements the converter core: the tiered acquisition of
// the exchange rate and marketplace price (probe → live feed → cache →
// static fallback) and the conversions computed on top of them.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WhoSowSee/CurrencyConverter/internal/cache"
	"github.com/WhoSowSee/CurrencyConverter/internal/metrics"
	"github.com/WhoSowSee/CurrencyConverter/internal/models"
	"github.com/WhoSowSee/CurrencyConverter/internal/netcheck"
)

var (
	// ErrInvalidInput rejects non-positive amounts and rates before any
	// network or cache work.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateUnavailable means no exchange rate was ever established.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

const (
	baseCurrency  = "UAH"
	quoteCurrency = "RUB"

	initProbeTimeout = time.Second
)

// Pricing tiers, in consultation order.
const (
	tierCache    = "cache"
	tierLive     = "live"
	tierFallback = "fallback"
)

// RateFetcher fetches the current UAH→RUB rate from the remote feed.
type RateFetcher interface {
	FetchRate(ctx context.Context) (float64, error)
}

// QuoteFetcher fetches the marketplace quote for an amount.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, amount float64, currency string) (float64, error)
}

// Converter orchestrates the probe, the feeds, the cache, and the fallback
// pricing model, tracking which rate source is currently authoritative.
// Operations are synchronous and meant for one logical flow at a time;
// callers embedding it in a concurrent surface serialize access themselves.
type Converter struct {
	prober   netcheck.Prober
	rates    RateFetcher
	prices   QuoteFetcher
	cache    *cache.Manager
	fallback *FallbackModel
	logger   *zap.Logger

	currentRate float64
	isOnline    bool
	source      models.RateSource
}

func NewConverter(
	prober netcheck.Prober,
	rates RateFetcher,
	prices QuoteFetcher,
	cacheManager *cache.Manager,
	logger *zap.Logger,
) *Converter {
	return &Converter{
		prober:   prober,
		rates:    rates,
		prices:   prices,
		cache:    cacheManager,
		fallback: NewFallbackModel(),
		logger:   logger,
		source:   models.RateSourceUninitialized,
	}
}

// Initialize walks the acquisition tiers until some usable rate is
// established: live feed when reachable, then the cached rate with offline
// extension, then the static default. It always succeeds; the resulting
// rate source is the only failure signal.
func (c *Converter) Initialize(ctx context.Context) models.RateSource {
	c.isOnline = c.prober.IsReachable(initProbeTimeout)

	if c.isOnline {
		rate, err := c.rates.FetchRate(ctx)
		if err == nil && rate > 0 {
			c.cache.SetRate(rate)
			c.currentRate = rate
			c.source = models.RateSourceAPI
			metrics.RateSourceResolved.WithLabelValues(string(c.source)).Inc()
			c.logger.Info("exchange rate fetched from feed", zap.Float64("rate", rate))
			return c.source
		}
		c.logger.Warn("rate feed unavailable, demoting to offline path", zap.Error(err))
		metrics.FeedErrors.WithLabelValues("rate").Inc()
		c.isOnline = false
	}

	if rate, ok := c.cache.GetRate(true); ok {
		c.currentRate = rate
		c.source = models.RateSourceCache
		metrics.RateSourceResolved.WithLabelValues(string(c.source)).Inc()
		c.logger.Info("using cached exchange rate", zap.Float64("rate", rate))
		return c.source
	}

	c.currentRate = cache.DefaultRate
	c.source = models.RateSourceDefault
	metrics.RateSourceResolved.WithLabelValues(string(c.source)).Inc()
	c.logger.Warn("no live or cached rate, using default", zap.Float64("rate", c.currentRate))
	return c.source
}

// SetManualRate overrides the active rate, bypassing all network and cache
// logic until the next Initialize or another override.
func (c *Converter) SetManualRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidInput, rate)
	}
	c.currentRate = rate
	c.source = models.RateSourceManual
	metrics.RateSourceResolved.WithLabelValues(string(c.source)).Inc()
	c.logger.Info("exchange rate set manually", zap.Float64("rate", rate))
	return nil
}

// ConvertCurrency converts amount UAH→RUB, or RUB→UAH when reverse is set.
// The result carries the rate used, for auditability.
func (c *Converter) ConvertCurrency(amount float64, reverse bool) (*models.ConversionResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidInput, amount)
	}
	if c.currentRate == 0 {
		return nil, ErrRateUnavailable
	}

	res := &models.ConversionResult{
		ConversionID: conversionID(),
		Amount:       amount,
		Rate:         c.currentRate,
	}
	if reverse {
		res.Result = round2(amount / c.currentRate)
		res.FromCurrency = quoteCurrency
		res.ToCurrency = baseCurrency
		metrics.Conversions.WithLabelValues("rub_uah").Inc()
	} else {
		res.Result = round2(amount * c.currentRate)
		res.FromCurrency = baseCurrency
		res.ToCurrency = quoteCurrency
		metrics.Conversions.WithLabelValues("uah_rub").Inc()
	}
	return res, nil
}

// ConvertToSteam prices a marketplace top-up. A UAH source amount is first
// converted to RUB with the active rate; RUB amounts are priced directly.
//
// A manual rate counts as effectively online for pricing: the override is
// read as explicit permission to try the live price feed even though no
// probe succeeded. That conflates user trust in the rate with feed
// reachability, but it is the established behavior and is kept.
func (c *Converter) ConvertToSteam(ctx context.Context, amount float64, fromUAH bool) (*models.SteamResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidInput, amount)
	}
	if c.currentRate == 0 {
		return nil, ErrRateUnavailable
	}

	effectivelyOnline := c.isOnline || c.source == models.RateSourceManual

	res := &models.SteamResult{
		ConversionID: conversionID(),
		Amount:       amount,
	}

	priced := amount
	if fromUAH {
		res.FromCurrency = baseCurrency
		res.RubAmount = round2(amount * c.currentRate)
		res.Rate = c.currentRate
		priced = res.RubAmount
	} else {
		res.FromCurrency = quoteCurrency
	}

	quote, tier := c.priceWithTiers(ctx, priced, effectivelyOnline)
	res.SteamResult = int(quote)
	res.PriceTier = tier
	res.CommissionAmount = round2(priced - quote)
	if priced > 0 {
		res.Commission = round2(round4((priced-quote)/priced) * 100)
	}

	metrics.Conversions.WithLabelValues("steam").Inc()
	return res, nil
}

// priceWithTiers consults the cache, then the live feed when effectively
// online, then the fallback model. A failed tier yields immediately to the
// next; no tier retries itself.
func (c *Converter) priceWithTiers(ctx context.Context, amount float64, online bool) (float64, string) {
	key := cache.QuoteKey(amount, quoteCurrency)

	if v, ok := c.cache.GetQuote(key); ok {
		metrics.PriceTierUsed.WithLabelValues(tierCache).Inc()
		return v, tierCache
	}

	if online {
		v, err := c.prices.FetchQuote(ctx, amount, quoteCurrency)
		if err == nil {
			c.cache.SetQuote(key, v)
			metrics.PriceTierUsed.WithLabelValues(tierLive).Inc()
			return v, tierLive
		}
		c.logger.Warn("price feed unavailable, using fallback model", zap.Error(err))
		metrics.FeedErrors.WithLabelValues("price").Inc()
	}

	metrics.PriceTierUsed.WithLabelValues(tierFallback).Inc()
	return c.fallback.Estimate(amount), tierFallback
}

// StatusInfo is a pure read-only projection of the converter state.
func (c *Converter) StatusInfo() models.StatusInfo {
	info := models.StatusInfo{
		IsOnline:    c.isOnline,
		CurrentRate: c.currentRate,
		RateSource:  c.source,
	}
	if age, ok := c.cache.AgeDescription(); ok {
		info.CacheAge = age
	}
	if c.currentRate > 0 {
		info.RateDisplay = fmt.Sprintf("1 %s = %s %s | 1 %s = %s %s",
			baseCurrency, trimFloat(round3(c.currentRate)), quoteCurrency,
			quoteCurrency, trimFloat(round3(1/c.currentRate)), baseCurrency)
	}
	return info
}

// Reload discards the in-memory cache state and re-runs the acquisition
// tiers, picking up out-of-band changes to the cache file.
func (c *Converter) Reload(ctx context.Context) models.RateSource {
	c.cache.ReloadFromDisk()
	return c.Initialize(ctx)
}

func conversionID() string {
	return "conv_" + uuid.NewString()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
