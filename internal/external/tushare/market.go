package tushare

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mhzhou/ashare-screener/internal/contracts"
)

const dateLayout = "20060102"

// StockBasic fetches the full listed-instrument universe, no filtering.
func (c *Client) StockBasic(ctx context.Context) ([]contracts.Instrument, error) {
	records, err := c.Query(ctx, "stock_basic", map[string]string{
		"list_status": "L",
	}, "ts_code,symbol,name,market,industry,exchange,list_date")
	if err != nil {
		return nil, fmt.Errorf("fetch stock_basic: %w", err)
	}

	instruments := make([]contracts.Instrument, 0, len(records))
	for _, rec := range records {
		instruments = append(instruments, contracts.Instrument{
			TSCode:   rec.Str("ts_code"),
			Symbol:   rec.Str("symbol"),
			Name:     rec.Str("name"),
			Board:    rec.Str("market"),
			Industry: rec.Str("industry"),
			Exchange: rec.Str("exchange"),
			ListDate: rec.Str("list_date"),
		})
	}
	return instruments, nil
}

// Daily fetches daily bars. Codes are comma-joined for batch quote pulls;
// either tradeDate or the start/end range selects the span.
func (c *Client) Daily(ctx context.Context, codes []string, tradeDate, start, end time.Time) ([]contracts.Bar, error) {
	params := map[string]string{}
	if len(codes) > 0 {
		params["ts_code"] = strings.Join(codes, ",")
	}
	if !tradeDate.IsZero() {
		params["trade_date"] = tradeDate.Format(dateLayout)
	}
	if !start.IsZero() {
		params["start_date"] = start.Format(dateLayout)
	}
	if !end.IsZero() {
		params["end_date"] = end.Format(dateLayout)
	}

	records, err := c.Query(ctx, "daily", params,
		"ts_code,trade_date,open,high,low,close,pct_chg,vol,amount")
	if err != nil {
		return nil, fmt.Errorf("fetch daily: %w", err)
	}

	bars := make([]contracts.Bar, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse(dateLayout, rec.Str("trade_date"))
		if err != nil {
			continue
		}
		bars = append(bars, contracts.Bar{
			TSCode:    rec.Str("ts_code"),
			TradeDate: date,
			Open:      rec.Float("open"),
			High:      rec.Float("high"),
			Low:       rec.Float("low"),
			Close:     rec.Float("close"),
			PctChange: rec.Float("pct_chg"),
			Volume:    rec.Float("vol"),
			Turnover:  rec.Float("amount"),
		})
	}
	return bars, nil
}

// TradeCal queries the trading calendar for open days in [start, end].
// Dates come back in ascending order.
func (c *Client) TradeCal(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	records, err := c.Query(ctx, "trade_cal", map[string]string{
		"start_date": start.Format(dateLayout),
		"end_date":   end.Format(dateLayout),
		"is_open":    "1",
	}, "cal_date,is_open")
	if err != nil {
		return nil, fmt.Errorf("fetch trade_cal: %w", err)
	}

	days := make([]time.Time, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse(dateLayout, rec.Str("cal_date"))
		if err != nil {
			continue
		}
		days = append(days, date)
	}

	return days, nil
}
