package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MegaStore/internal/catalog"
)

var (
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// HTTPClient talks to a running catalog service.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string) *HTTPClient {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Count(ctx context.Context) (int, error) {
	var st catalog.Stats
	if _, err := c.getJSON(ctx, "/stats", &st, false); err != nil {
		return 0, err
	}
	return st.Products, nil
}

func (c *HTTPClient) LookupByCode(ctx context.Context, code string) (catalog.Product, bool, error) {
	var p catalog.Product
	found, err := c.getJSON(ctx, "/products/"+url.PathEscape(code), &p, true)
	if err != nil || !found {
		return catalog.Product{}, false, err
	}
	return p, true, nil
}

func (c *HTTPClient) SearchByPrefix(ctx context.Context, term string) ([]catalog.Product, error) {
	return c.getList(ctx, "/search?q="+url.QueryEscape(term))
}

func (c *HTTPClient) ListByName(ctx context.Context) ([]catalog.Product, error) {
	return c.getList(ctx, "/products?order=name")
}

func (c *HTTPClient) ListByCode(ctx context.Context) ([]catalog.Product, error) {
	return c.getList(ctx, "/products?order=code")
}

func (c *HTTPClient) FilterByInitial(ctx context.Context, letter string) ([]catalog.Product, error) {
	return c.getList(ctx, "/letters/"+url.PathEscape(letter))
}

func (c *HTTPClient) getList(ctx context.Context, path string) ([]catalog.Product, error) {
	var out []catalog.Product
	if _, err := c.getJSON(ctx, path, &out, false); err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

// getJSON decodes a 200 body into v. A 400 is returned as a
// catalog.ErrValidation. A 404 reports found == false only when
// notFoundOK is set; elsewhere it means a wrong base URL or route.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any, notFoundOK bool) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		if notFoundOK {
			return false, nil
		}
		return false, fmt.Errorf("%w: status=%d path=%s", ErrCatalogBadStatus, resp.StatusCode, path)
	case http.StatusBadRequest:
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return false, fmt.Errorf("%w: %s", catalog.ErrValidation, eb.Error)
	case http.StatusServiceUnavailable:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, ErrCatalogUnavailable
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
