package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/domain/product"
	"github.com/Picces04/ToyStore-Client/internal/pager"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrUnsuccessful = errors.New("API response unsuccessful")
	ErrInvalidData  = errors.New("invalid data")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Result  T      `json:"result"`
	Message string `json:"message"`
}

type tokenKey struct{}

// WithToken attaches a bearer token that is forwarded on every request made
// with the returned context.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Client is a typed client for the storefront REST API. It never retries.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     zerolog.Logger
}

func New(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend.New: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend.New: base url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "backend").Logger(),
	}, nil
}

// ProductQuery holds the parameters of GET /api/Product/client. A nil price
// bound is not sent.
type ProductQuery struct {
	Page        int
	PageSize    int
	Sort        string
	CategoryIDs []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("Sorts", q.Sort)
	if len(q.CategoryIDs) > 0 {
		v.Set("CategoryIds", strings.Join(q.CategoryIDs, ","))
	}
	if q.MinPrice != nil {
		v.Set("MinPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("MaxPrice", q.MaxPrice.String())
	}
	return v
}

func (c *Client) Products(ctx context.Context, q ProductQuery) (pager.Page[product.Product], error) {
	const op = "Client.Products"

	var env envelope[pager.Page[product.Product]]
	if err := c.get(ctx, "/api/Product/client", q.values(), &env); err != nil {
		return pager.Page[product.Product]{}, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return pager.Page[product.Product]{}, fmt.Errorf("%s: %w", op, ErrUnsuccessful)
	}
	return env.Result, nil
}

func (c *Client) Categories(ctx context.Context, page, pageSize int) ([]product.Category, error) {
	const op = "Client.Categories"

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(pageSize))

	var env envelope[pager.Page[product.Category]]
	if err := c.get(ctx, "/api/Category/Client", v, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%s: %w", op, ErrUnsuccessful)
	}
	return env.Result.Items, nil
}

// NewsQuery holds the parameters of GET /api/News/Client. An empty search
// is not sent.
type NewsQuery struct {
	Page     int
	PageSize int
	Search   string
}

func (c *Client) News(ctx context.Context, q NewsQuery) (pager.Page[product.BlogItem], error) {
	const op = "Client.News"

	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("Search", q.Search)
	}

	var env envelope[pager.Page[product.BlogItem]]
	if err := c.get(ctx, "/api/News/Client", v, &env); err != nil {
		return pager.Page[product.BlogItem]{}, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return pager.Page[product.BlogItem]{}, fmt.Errorf("%s: %w", op, ErrUnsuccessful)
	}
	return env.Result, nil
}

func (c *Client) NewsByID(ctx context.Context, id string) (product.BlogItem, error) {
	const op = "Client.NewsByID"

	var env envelope[*product.BlogItem]
	if err := c.get(ctx, "/api/News/"+url.PathEscape(id), nil, &env); err != nil {
		return product.BlogItem{}, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success || env.Result == nil {
		return product.BlogItem{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return *env.Result, nil
}

// BestSellers returns the monthly best-seller statistic. The endpoint answers
// with a bare array; anything else is ErrInvalidData.
func (c *Client) BestSellers(ctx context.Context, year int, month time.Month, topN int) ([]product.BestSeller, error) {
	const op = "Client.BestSellers"

	v := url.Values{}
	v.Set("topN", strconv.Itoa(topN))
	path := fmt.Sprintf("/api/Statistic/product/%d/%d", year, int(month))

	var raw json.RawMessage
	if err := c.get(ctx, path, v, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidData)
	}

	var out []product.BestSeller
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidData, err)
	}
	return out, nil
}

// get requests path, which must already be escaped, relative to the base URL.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return err
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + unescaped
	u.RawPath = c.baseURL.EscapedPath() + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if tok := TokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope[json.RawMessage]
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}
