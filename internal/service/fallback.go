package service

import (
	"math"
	"sync"
)

type pricePoint struct {
	pay float64
	get float64
}

// fallbackTable holds observed (paid, received) marketplace sample points
// in ascending order. The marketplace's commission schedule is non-linear
// and undocumented beyond these points.
var fallbackTable = []pricePoint{
	{30, 29},
	{45, 43},
	{50, 47},
	{75, 71},
	{100, 94},
	{150, 141},
	{250, 234},
	{350, 328},
	{500, 468},
	{700, 655},
	{1000, 935},
	{1200, 1122},
	{1500, 1402},
	{2200, 2057},
	{3000, 2804},
	{5000, 4673},
	{8000, 7477},
	{15000, 14019},
}

const fallbackMemoLimit = 128

// FallbackModel estimates the marketplace quote by piecewise-linear
// interpolation over the reference table. It is the last-resort pricing
// tier: pure, deterministic, and it never fails.
type FallbackModel struct {
	table []pricePoint

	mu   sync.Mutex
	memo map[float64]float64
}

func NewFallbackModel() *FallbackModel {
	return &FallbackModel{
		table: fallbackTable,
		memo:  make(map[float64]float64),
	}
}

// Estimate returns the estimated received amount for the given paid
// amount, rounded to the nearest integer unit. Results are memoized up to
// a fixed bound; past it, results are still computed, just not retained.
func (f *FallbackModel) Estimate(amount float64) float64 {
	f.mu.Lock()
	if v, ok := f.memo[amount]; ok {
		f.mu.Unlock()
		return v
	}
	f.mu.Unlock()

	v := f.compute(amount)

	f.mu.Lock()
	if len(f.memo) < fallbackMemoLimit {
		f.memo[amount] = v
	}
	f.mu.Unlock()
	return v
}

func (f *FallbackModel) compute(amount float64) float64 {
	for _, p := range f.table {
		if p.pay == amount {
			return p.get
		}
	}

	first := f.table[0]
	if amount < first.pay {
		return math.Round(amount * first.get / first.pay)
	}
	last := f.table[len(f.table)-1]
	if amount > last.pay {
		return math.Round(amount * last.get / last.pay)
	}

	for i := 0; i < len(f.table)-1; i++ {
		p1, p2 := f.table[i], f.table[i+1]
		if p1.pay <= amount && amount <= p2.pay {
			ratio := (amount - p1.pay) / (p2.pay - p1.pay)
			return math.Round(p1.get + ratio*(p2.get-p1.get))
		}
	}

	// Unreachable with an ascending table; kept as the observed average
	// marketplace ratio.
	return math.Round(amount * 0.935)
}
