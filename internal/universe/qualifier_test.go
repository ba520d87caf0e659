package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

func defaultConfig() Config {
	return Config{
		ExcludeBoards: []string{"创业板", "科创板"},
		MinPrice:      3.0,
	}
}

func TestQualify_SpecScenario(t *testing.T) {
	// One on an excluded board, one below minimum price, one qualifying.
	instruments := []contracts.Instrument{
		{TSCode: "300001.SZ", Symbol: "300001", Name: "特锐德", Board: "创业板", Exchange: "SZSE"},
		{TSCode: "600001.SH", Symbol: "600001", Name: "邯郸钢铁", Board: "主板", Exchange: "SSE"},
		{TSCode: "600002.SH", Symbol: "600002", Name: "齐鲁石化", Board: "主板", Exchange: "SSE"},
	}
	quotes := map[string]contracts.QuoteSnapshot{
		"300001.SZ": {TSCode: "300001.SZ", Close: 20.0},
		"600001.SH": {TSCode: "600001.SH", Close: 2.5},
		"600002.SH": {TSCode: "600002.SH", Close: 5.0},
	}

	got := Qualify(instruments, quotes, defaultConfig())

	require.Len(t, got, 1)
	assert.Equal(t, "600002.SH", got[0].TSCode)
	assert.Equal(t, 5.0, got[0].LastPrice)
	assert.Equal(t, "上海证券交易所", got[0].ExchangeName)
}

func TestQualify_ExcludesETFsCaseInsensitive(t *testing.T) {
	instruments := []contracts.Instrument{
		{TSCode: "510300.SH", Name: "沪深300ETF", Board: "主板", Exchange: "SSE"},
		{TSCode: "510050.SH", Name: "上证50etf", Board: "主板", Exchange: "SSE"},
		{TSCode: "600000.SH", Name: "浦发银行", Board: "主板", Exchange: "SSE"},
	}
	quotes := map[string]contracts.QuoteSnapshot{
		"510300.SH": {Close: 4.1},
		"510050.SH": {Close: 3.2},
		"600000.SH": {Close: 8.1},
	}

	got := Qualify(instruments, quotes, defaultConfig())

	require.Len(t, got, 1)
	assert.Equal(t, "600000.SH", got[0].TSCode)
}

func TestQualify_DropsInstrumentsWithoutQuote(t *testing.T) {
	instruments := []contracts.Instrument{
		{TSCode: "600000.SH", Name: "浦发银行", Board: "主板", Exchange: "SSE"},
		{TSCode: "600887.SH", Name: "伊利股份", Board: "主板", Exchange: "SSE"},
	}
	quotes := map[string]contracts.QuoteSnapshot{
		"600000.SH": {Close: 8.1},
	}

	got := Qualify(instruments, quotes, defaultConfig())

	require.Len(t, got, 1)
	assert.Equal(t, "600000.SH", got[0].TSCode)
}

func TestQualify_Properties(t *testing.T) {
	instruments := []contracts.Instrument{
		{TSCode: "300750.SZ", Name: "宁德时代", Board: "创业板", Exchange: "SZSE"},
		{TSCode: "688981.SH", Name: "中芯国际", Board: "科创板", Exchange: "SSE"},
		{TSCode: "510500.SH", Name: "中证500ETF", Board: "主板", Exchange: "SSE"},
		{TSCode: "600000.SH", Name: "浦发银行", Board: "主板", Exchange: "SSE"},
		{TSCode: "000001.SZ", Name: "平安银行", Board: "主板", Exchange: "SZSE"},
		{TSCode: "830001.BJ", Name: "某北交所", Board: "北交所", Exchange: "BSE"},
	}
	quotes := map[string]contracts.QuoteSnapshot{
		"300750.SZ": {Close: 180.0},
		"688981.SH": {Close: 50.0},
		"510500.SH": {Close: 6.0},
		"600000.SH": {Close: 8.1},
		"000001.SZ": {Close: 11.4},
		"830001.BJ": {Close: 4.2},
	}
	cfg := defaultConfig()

	got := Qualify(instruments, quotes, cfg)

	exclude := map[string]bool{}
	for _, b := range cfg.ExcludeBoards {
		exclude[b] = true
	}
	for _, c := range got {
		assert.False(t, exclude[c.Board], "board %s must be excluded", c.Board)
		assert.False(t, isETF(c.Name), "ETF %s must be excluded", c.Name)
		assert.GreaterOrEqual(t, c.LastPrice, cfg.MinPrice)
		_, hasQuote := quotes[c.TSCode]
		assert.True(t, hasQuote)
	}
	assert.Len(t, got, 3)
}

func TestQualify_OrderIndependent(t *testing.T) {
	instruments := []contracts.Instrument{
		{TSCode: "600000.SH", Name: "浦发银行", Board: "主板", Exchange: "SSE"},
		{TSCode: "000001.SZ", Name: "平安银行", Board: "主板", Exchange: "SZSE"},
	}
	quotes := map[string]contracts.QuoteSnapshot{
		"600000.SH": {Close: 8.1},
		"000001.SZ": {Close: 11.4},
	}

	forward := Qualify(instruments, quotes, defaultConfig())

	reversed := []contracts.Instrument{instruments[1], instruments[0]}
	backward := Qualify(reversed, quotes, defaultConfig())

	assert.ElementsMatch(t, forward, backward)
}
