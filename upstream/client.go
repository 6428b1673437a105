// Package upstream talks to the external customer source, walking its
// paginated listing until every record has been fetched.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrUnavailable = errors.New("upstream unavailable")
	ErrMalformed   = errors.New("upstream payload malformed")
)

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

// Record is the customer shape on the upstream wire. Dates and timestamps
// arrive as strings and are parsed by the ingestion layer; unknown fields
// are ignored.
type Record struct {
	CustomerID     string   `json:"customer_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	DateOfBirth    *string  `json:"date_of_birth"`
	AccountBalance *float64 `json:"account_balance"`
	CreatedAt      *string  `json:"created_at"`
}

// Page is one slice of the upstream listing plus the source's own
// pagination bookkeeping.
type Page struct {
	Data       []Record `json:"data"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// NewClient builds a client for the source rooted at baseURL. pageSize is
// clamped to [1,100]; zero or negative means the default of 100.
func NewClient(baseURL string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Client{
		baseURL:  baseURL,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchAll retrieves every customer, requesting page 1, 2, ... until the
// source is exhausted. Page order and in-page order are preserved. On any
// failure the pages fetched so far are discarded and only the error is
// returned.
func (c *Client) FetchAll(ctx context.Context) ([]Record, error) {
	var all []Record
	for pageNum := 1; ; pageNum++ {
		p, err := c.FetchPage(ctx, pageNum)
		if err != nil {
			return nil, err
		}

		all = append(all, p.Data...)

		if len(all) >= p.Total || len(p.Data) == 0 {
			return all, nil
		}
	}
}

// FetchPage requests a single page (1-based) at the client's page size.
func (c *Client) FetchPage(ctx context.Context, pageNum int) (Page, error) {
	u := fmt.Sprintf("%s/api/customers?%s", c.baseURL, url.Values{
		"page":  {strconv.Itoa(pageNum)},
		"limit": {strconv.Itoa(c.pageSize)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: page %d: %v", ErrUnavailable, pageNum, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("%w: page %d: status %d", ErrUnavailable, pageNum, resp.StatusCode)
	}

	var p Page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Page{}, fmt.Errorf("%w: page %d: %v", ErrMalformed, pageNum, err)
	}
	return p, nil
}

// Health probes the source's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
