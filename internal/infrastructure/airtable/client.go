package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.airtable.com/v0"
	maxPageSize    = 100
)

// Config holds Airtable API connection settings
type Config struct {
	// APIKey is a personal access token (pat...)
	APIKey string
	// BaseID identifies the Airtable base (app...)
	BaseID string
	// BaseURL overrides the API endpoint; used in tests
	BaseURL string
}

// Validate validates the Airtable configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("airtable: API key is required")
	}
	if c.BaseID == "" {
		return fmt.Errorf("airtable: base ID is required")
	}
	return nil
}

// Client is a thin HTTP client for the Airtable REST API. It exposes record
// CRUD and formula-based filtering on the tables this service uses.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an Airtable API client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// Record is a raw Airtable record envelope
type Record struct {
	ID          string         `json:"id,omitempty"`
	CreatedTime time.Time      `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// StringField returns the named field as a string, or "" when absent or of
// another type.
func (r *Record) StringField(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

// BoolField returns the named field as a bool. Airtable checkboxes omit the
// field entirely when unchecked.
func (r *Record) BoolField(name string) bool {
	v, _ := r.Fields[name].(bool)
	return v
}

// StringsField returns the named multi-value field as a string slice.
func (r *Record) StringsField(name string) []string {
	raw, ok := r.Fields[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ListOptions narrows a record listing
type ListOptions struct {
	// FilterByFormula is an Airtable formula; build user-dependent formulas
	// with the helpers in formula.go so string values are escaped.
	FilterByFormula string
	// Fields restricts the returned field set
	Fields []string
	// MaxRecords caps the total records returned; 0 means no cap
	MaxRecords int
	// View scopes the listing to a table view
	View string
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type recordRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast,omitempty"`
}

type apiError struct {
	Error struct {
		Type    string          `json:"type"`
		Message json.RawMessage `json:"message"`
	} `json:"error"`
}

// ListRecords lists records from a table, following pagination offsets until
// the listing is exhausted or MaxRecords is reached.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		q := url.Values{}
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		for _, f := range opts.Fields {
			q.Add("fields[]", f)
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if opts.View != "" {
			q.Set("view", opts.View)
		}
		q.Set("pageSize", strconv.Itoa(maxPageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		endpoint := c.tableURL(table) + "?" + q.Encode()

		var page listResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		records = append(records, page.Records...)

		if page.Offset == "" {
			break
		}
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			records = records[:opts.MaxRecords]
			break
		}
		offset = page.Offset
	}

	return records, nil
}

// GetRecord fetches a single record by its Airtable record ID.
func (c *Client) GetRecord(ctx context.Context, table, recordID string) (*Record, error) {
	var record Record
	if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"/"+url.PathEscape(recordID), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateRecord creates a record with the given fields.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	var record Record
	body := recordRequest{Fields: fields, Typecast: true}
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), body, &record); err != nil {
		return nil, err
	}

	c.logger.Info("Created Airtable record",
		zap.String("table", table),
		zap.String("record_id", record.ID))
	return &record, nil
}

// UpdateRecord applies a partial update to a record.
func (c *Client) UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	var record Record
	body := recordRequest{Fields: fields, Typecast: true}
	if err := c.do(ctx, http.MethodPatch, c.tableURL(table)+"/"+url.PathEscape(recordID), body, &record); err != nil {
		return nil, err
	}

	c.logger.Info("Updated Airtable record",
		zap.String("table", table),
		zap.String("record_id", recordID))
	return &record, nil
}

func (c *Client) tableURL(table string) string {
	return c.config.BaseURL + "/" + url.PathEscape(c.config.BaseID) + "/" + url.PathEscape(table)
}

// do executes one API request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("airtable: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("airtable: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("airtable: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Type != "" {
			c.logger.Error("Airtable API error",
				zap.Int("status", resp.StatusCode),
				zap.String("type", apiErr.Error.Type))
			return fmt.Errorf("airtable: %s (status %d): %w", apiErr.Error.Type, resp.StatusCode, shared.ErrUpstream)
		}
		return fmt.Errorf("airtable: unexpected status %d: %w", resp.StatusCode, shared.ErrUpstream)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("airtable: failed to decode response: %w", err)
		}
	}

	return nil
}
