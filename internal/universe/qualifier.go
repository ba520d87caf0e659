package universe

import (
	"strings"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

// exchangeNames maps provider exchange codes to display names.
var exchangeNames = map[string]string{
	"SSE":  "上海证券交易所",
	"SZSE": "深圳证券交易所",
	"BSE":  "北京证券交易所",
}

// Config holds the static eligibility rules.
type Config struct {
	ExcludeBoards []string // listing boards dropped outright
	MinPrice      float64  // minimum last price, CNY
}

// Qualify applies the static eligibility rules to the raw universe joined
// with the latest quotes. It is pure and order-independent: no historical
// data is consulted.
//
// In order: board exclusion, ETF name exclusion, quote presence, minimum
// price. Surviving instruments carry normalized exchange display names.
func Qualify(instruments []contracts.Instrument, quotes map[string]contracts.QuoteSnapshot, cfg Config) []contracts.Candidate {
	excluded := make(map[string]bool, len(cfg.ExcludeBoards))
	for _, board := range cfg.ExcludeBoards {
		excluded[board] = true
	}

	candidates := make([]contracts.Candidate, 0, len(instruments))
	for _, inst := range instruments {
		if excluded[inst.Board] {
			continue
		}
		if isETF(inst.Name) {
			continue
		}

		quote, ok := quotes[inst.TSCode]
		if !ok {
			// No current price available.
			continue
		}
		if quote.Close < cfg.MinPrice {
			continue
		}

		candidates = append(candidates, contracts.Candidate{
			Instrument:   inst,
			ExchangeName: exchangeName(inst.Exchange),
			LastPrice:    quote.Close,
			PctChange:    quote.PctChange,
			Volume:       quote.Volume,
			Turnover:     quote.Turnover,
		})
	}

	return candidates
}

// isETF reports whether the display name marks an exchange-traded fund.
func isETF(name string) bool {
	return strings.Contains(strings.ToUpper(name), "ETF")
}

// exchangeName normalizes an exchange code, falling back to the raw code.
func exchangeName(code string) string {
	if name, ok := exchangeNames[code]; ok {
		return name
	}
	return code
}
