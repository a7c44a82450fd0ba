// Package source fetches raw sales records from the remote record
// store. The store is a REST endpoint paginated by offset Range
// headers; a fetch walks pages of a fixed size until a short page and
// aborts entirely on any page failure.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"bi-dashboard/internal/config"
	"bi-dashboard/internal/observability"
)

// Record is one loosely-typed row as the store returns it.
type Record = map[string]any

type Client struct {
	baseURL     string
	apiKey      string
	table       string
	pageSize    int
	pageTimeout time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	metrics     *observability.Metrics
}

func NewClient(cfg config.SourceConfig, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		table:       cfg.Table,
		pageSize:    cfg.PageSize,
		pageTimeout: cfg.PageTimeout,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:      logger,
		metrics:     metrics,
	}
}

// FetchAll retrieves every record, page by page. Any page error aborts
// the whole fetch so a partially loaded dataset never replaces a valid
// cached one.
func (c *Client) FetchAll(ctx context.Context) ([]Record, error) {
	var all []Record
	offset := 0

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("page pacing: %w", err)
		}

		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		if c.metrics != nil {
			c.metrics.SourcePages.Inc()
			c.metrics.SourceRecords.Add(float64(len(page)))
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)

		if len(page) < c.pageSize {
			break
		}
		offset += c.pageSize

		if len(all)%10000 == 0 {
			c.logger.Debug("fetch progress", "records", len(all))
		}
	}

	c.logger.Info("fetched raw records", "records", len(all), "table", c.table)
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, offset int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/rest/v1/%s?select=*", c.baseURL, c.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Range", fmt.Sprintf("%d-%d", offset, offset+c.pageSize-1))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page []Record
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return page, nil
}
