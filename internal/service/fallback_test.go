package service

import "testing"

func TestFallbackEstimate(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{
			name:   "smallest table hit",
			amount: 30,
			want:   29,
		},
		{
			name:   "mid table hit",
			amount: 100,
			want:   94,
		},
		{
			name:   "largest table hit",
			amount: 15000,
			want:   14019,
		},
		{
			name:   "below table scales by smallest ratio",
			amount: 20,
			want:   19, // round(20 * 29/30)
		},
		{
			name:   "above table scales by largest ratio",
			amount: 20000,
			want:   18692, // round(20000 * 14019/15000)
		},
		{
			name:   "interpolates between bracketing points",
			amount: 200,
			want:   188, // round(141 + 50/100 * (234-141))
		},
		{
			name:   "interpolates near upper bracket",
			amount: 240,
			want:   225, // round(141 + 90/100 * (234-141))
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewFallbackModel()
			got := model.Estimate(tt.amount)
			if got != tt.want {
				t.Errorf("Estimate(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFallbackEstimateDeterministic(t *testing.T) {
	model := NewFallbackModel()
	first := model.Estimate(777)
	for i := 0; i < 5; i++ {
		if got := model.Estimate(777); got != first {
			t.Fatalf("Estimate(777) changed between calls: %v != %v", got, first)
		}
	}
}

func TestFallbackMemoBounded(t *testing.T) {
	model := NewFallbackModel()
	for i := 0; i < fallbackMemoLimit*2; i++ {
		model.Estimate(float64(i) + 0.5)
	}

	model.mu.Lock()
	size := len(model.memo)
	model.mu.Unlock()
	if size > fallbackMemoLimit {
		t.Errorf("memo grew to %d entries, limit is %d", size, fallbackMemoLimit)
	}

	// Amounts past the bound still compute correctly.
	if got := model.Estimate(200); got != 188 {
		t.Errorf("Estimate(200) after filling memo = %v, want 188", got)
	}
}
