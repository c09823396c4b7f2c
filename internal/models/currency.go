package models

// RateSource tags the provenance of the currently active exchange rate.
type RateSource string

const (
	RateSourceUninitialized RateSource = "uninitialized"
	RateSourceAPI           RateSource = "api"
	RateSourceCache         RateSource = "cache"
	RateSourceManual        RateSource = "manual"
	RateSourceDefault       RateSource = "default"
)

type ConversionRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Reverse bool    `json:"reverse"`
}

type SteamRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	FromUAH bool    `json:"from_uah"`
}

type ManualRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

type ConversionResult struct {
	ConversionID string  `json:"conversion_id"`
	Amount       float64 `json:"amount"`
	Result       float64 `json:"result"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Rate         float64 `json:"rate"`
}

// SteamResult reports the estimated marketplace top-up outcome. Commission
// is a percentage of the paid amount; a negative commission means the
// marketplace quoted more than was paid and is surfaced as-is.
type SteamResult struct {
	ConversionID     string  `json:"conversion_id"`
	Amount           float64 `json:"amount"`
	FromCurrency     string  `json:"from_currency"`
	RubAmount        float64 `json:"rub_amount,omitempty"`
	SteamResult      int     `json:"steam_result"`
	Commission       float64 `json:"commission"`
	CommissionAmount float64 `json:"commission_amount"`
	Rate             float64 `json:"rate,omitempty"`
	PriceTier        string  `json:"price_tier"`
}

type StatusInfo struct {
	IsOnline    bool       `json:"is_online"`
	CurrentRate float64    `json:"current_rate"`
	CacheAge    string     `json:"cache_age,omitempty"`
	RateSource  RateSource `json:"rate_source"`
	RateDisplay string     `json:"rate_display,omitempty"`
}
