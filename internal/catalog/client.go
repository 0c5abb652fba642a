// Package catalog provides the remote catalog client and the read-through
// cache service that sits between callers and the local store.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
)

// productsEnvelope is the list response shape of the catalog API.
type productsEnvelope struct {
	Products []store.Product `json:"products"`
	Total    int             `json:"total"`
	Skip     int             `json:"skip"`
	Limit    int             `json:"limit"`
}

// Client talks to the remote catalog service over HTTP. It performs no
// retries and no backoff; deadlines come from the caller's context and the
// injected http.Client.
type Client struct {
	baseURL *url.URL
	limit   int
	http    *http.Client
}

// NewClient creates a catalog client for the given base URL. limit is the
// fixed page size sent with every list request.
func NewClient(baseURL string, limit int, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, limit: limit, http: httpClient}, nil
}

// FetchProducts retrieves one page of the full catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]store.Product, error) {
	var envelope productsEnvelope
	if err := c.getJSON(ctx, "products", c.limitQuery(), &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// FetchProductsByCategory retrieves one page of a single category.
func (c *Client) FetchProductsByCategory(ctx context.Context, category string) ([]store.Product, error) {
	var envelope productsEnvelope
	if err := c.getJSON(ctx, "products/category/"+url.PathEscape(category), c.limitQuery(), &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// FetchProductByID retrieves a single product.
func (c *Client) FetchProductByID(ctx context.Context, id int64) (*store.Product, error) {
	var product store.Product
	if err := c.getJSON(ctx, "products/"+strconv.FormatInt(id, 10), "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FetchCategories retrieves the category names.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "products/categories", "", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SearchProducts runs a full-text search on the remote catalog.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]store.Product, error) {
	q := url.Values{"q": []string{query}}
	var envelope productsEnvelope
	if err := c.getJSON(ctx, "products/search", q.Encode(), &envelope); err != nil {
		return nil, err
	}
	return envelope.Products, nil
}

// getJSON performs a GET against the catalog and decodes the response body
// into out. Any non-2xx status or decode failure becomes a FetchError; the
// status code is not interpreted further.
func (c *Client) getJSON(ctx context.Context, path, rawQuery string, out any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: rawQuery})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperrors.NewFetch(u.String(), 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewFetch(u.String(), 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apperrors.NewFetch(u.String(), resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewFetch(u.String(), resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) limitQuery() string {
	return url.Values{"limit": []string{strconv.Itoa(c.limit)}}.Encode()
}
