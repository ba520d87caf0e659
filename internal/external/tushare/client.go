package tushare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mhzhou/ashare-screener/pkg/httputil"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// Client handles communication with the Tushare pro API.
// Every call is a POST of {api_name, token, params, fields} against the
// single API endpoint; all upstream calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	token      string
	baseURL    string
}

// NewClient creates a new Tushare pro client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://api.tushare.pro"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		token:      token,
		baseURL:    baseURL,
	}
}

// request is the Tushare pro request envelope.
type request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params,omitempty"`
	Fields  string            `json:"fields,omitempty"`
}

// response is the Tushare pro response envelope. A non-zero Code is an API
// level error (bad token, permission, rate limit) even on HTTP 200.
type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

// Record is one row of a Tushare result set, keyed by field name.
type Record map[string]interface{}

// Str returns the named field as a string ("" when absent or null).
func (r Record) Str(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Float returns the named field as a float64 (0 when absent or null).
func (r Record) Float(field string) float64 {
	v, ok := r[field]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	}
	return 0
}

// Query performs one Tushare API call and returns the rows keyed by field
// name. Field-index mapping comes from the response header, never from
// positional assumptions.
func (c *Client) Query(ctx context.Context, apiName string, params map[string]string, fields string) ([]Record, error) {
	req := request{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	}

	resp, err := c.httpClient.PostJSON(ctx, c.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("tushare %s request failed: %w", apiName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tushare %s: unexpected status code: %d", apiName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tushare %s: read response body failed: %w", apiName, err)
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("tushare %s: decode response failed: %w", apiName, err)
	}

	if envelope.Code != 0 {
		return nil, fmt.Errorf("tushare %s: API error %d: %s", apiName, envelope.Code, envelope.Msg)
	}

	records := make([]Record, 0, len(envelope.Data.Items))
	for _, item := range envelope.Data.Items {
		rec := make(Record, len(envelope.Data.Fields))
		for i, field := range envelope.Data.Fields {
			if i < len(item) {
				rec[field] = item[i]
			}
		}
		records = append(records, rec)
	}

	c.logger.WithFields(map[string]interface{}{
		"api":   apiName,
		"count": len(records),
	}).Debug("Tushare query completed")

	return records, nil
}

// Ping verifies the token by issuing a minimal stock_basic call.
// A failure here is fatal to the whole pipeline.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Query(ctx, "stock_basic", map[string]string{
		"list_status": "L",
		"limit":       "1",
	}, "ts_code")
	if err != nil {
		return fmt.Errorf("tushare authentication check failed: %w", err)
	}
	return nil
}
