package screening

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

func sampleResult(mode contracts.Mode) *contracts.RunResult {
	return &contracts.RunResult{
		TradeDate: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Mode:      mode,
		Rows: []contracts.ResultRow{
			{
				Candidate: contracts.Candidate{
					Instrument:   contracts.Instrument{TSCode: "600001.SH", Symbol: "600001", Name: "示例钢铁", Board: "主板", Industry: "钢铁"},
					ExchangeName: "上海证券交易所",
					LastPrice:    5.0,
					PctChange:    9.9,
				},
				Class:      contracts.ClassStreak,
				StreakDays: 2,
			},
			{
				Candidate: contracts.Candidate{
					Instrument:   contracts.Instrument{TSCode: "000002.SZ", Symbol: "000002", Name: "示例地产", Board: "主板", Industry: "房地产"},
					ExchangeName: "深圳证券交易所",
					LastPrice:    14.0,
					PctChange:    1.1,
				},
				Class:        contracts.ClassTrend,
				Return60:     40.0,
				Volatility20: 10.0,
			},
		},
	}
}

func TestWriteCSV_BOMAndColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(contracts.ModeAll)))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "export must carry a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Contains(t, header, "streak_days")
	assert.Contains(t, header, "return_60d_pct")

	// Streak row carries streak days but empty trend metrics.
	streakRow := records[1]
	assert.Equal(t, "2", streakRow[len(header)-3])
	assert.Equal(t, "", streakRow[len(header)-2])

	// Trend row carries metrics but an empty streak column.
	trendRow := records[2]
	assert.Equal(t, "", trendRow[len(header)-3])
	assert.Equal(t, "40.00", trendRow[len(header)-2])
	assert.Equal(t, "10.00", trendRow[len(header)-1])
}

func TestWriteCSV_ModeColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(contracts.ModeStreak)))

	out := buf.String()
	assert.Contains(t, out, "streak_days")
	assert.NotContains(t, out, "return_60d_pct", "streak-only export skips trend columns")
}

func TestExportFilename(t *testing.T) {
	result := sampleResult(contracts.ModeTrend)
	assert.Equal(t, "screen_trend_all_20260831.csv", ExportFilename(result))

	result.Board = "主板"
	assert.True(t, strings.HasPrefix(ExportFilename(result), "screen_trend_主板_"))
}
