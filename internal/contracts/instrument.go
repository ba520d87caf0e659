package contracts

import "time"

// Instrument is one listed security from the provider's universe.
// Immutable once fetched; refreshed only by re-querying the universe.
type Instrument struct {
	TSCode   string `json:"ts_code"`  // exchange-qualified code, e.g. 600000.SH
	Symbol   string `json:"symbol"`   // display code, e.g. 600000
	Name     string `json:"name"`     // display name
	Board    string `json:"board"`    // listing board, e.g. 主板 / 创业板 / 科创板
	Industry string `json:"industry"` // industry classification
	Exchange string `json:"exchange"` // exchange code: SSE / SZSE / BSE
	ListDate string `json:"list_date"`
}

// QuoteSnapshot is the latest daily quote for one instrument.
type QuoteSnapshot struct {
	TSCode    string    `json:"ts_code"`
	TradeDate time.Time `json:"trade_date"`
	Close     float64   `json:"close"`      // last price, CNY
	PctChange float64   `json:"pct_change"` // percent
	Volume    float64   `json:"volume"`     // lots (手)
	Turnover  float64   `json:"turnover"`   // 万元
}

// Bar is one daily OHLC bar for one instrument.
// Bars for one request are unique per (instrument, trade date).
type Bar struct {
	TSCode    string    `json:"ts_code"`
	TradeDate time.Time `json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	PctChange float64   `json:"pct_change"`
	Volume    float64   `json:"volume"`
	Turnover  float64   `json:"turnover"`
}

// Candidate is an instrument that passed the static eligibility filters,
// joined with its latest quote and the exchange display name.
type Candidate struct {
	Instrument
	ExchangeName string  `json:"exchange_name"`
	LastPrice    float64 `json:"last_price"`
	PctChange    float64 `json:"pct_change"`
	Volume       float64 `json:"volume"`
	Turnover     float64 `json:"turnover"`
}
