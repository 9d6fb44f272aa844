// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kontentsource/internal/metrics"
)

const (
	// DefaultBaseURL is the production Delivery API endpoint.
	DefaultBaseURL = "https://deliver.kontent.ai"
	// DefaultPreviewBaseURL serves unpublished content with a preview key.
	DefaultPreviewBaseURL = "https://preview-deliver.kontent.ai"

	sourceHeader   = "X-KC-SOURCE"
	maxBodySize    = 50 << 20
	retryBaseDelay = 250 * time.Millisecond
)

// ErrProjectIDRequired is returned by New when no project id is configured.
var ErrProjectIDRequired = errors.New("delivery: project id is required")

// ResponseCache stores raw response bodies keyed by request URL.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Options configures a Client.
type Options struct {
	ProjectID      string
	BaseURL        string
	PreviewBaseURL string
	UsePreview     bool
	PreviewAPIKey  string
	SecuredAPIKey  string
	Language       string
	Timeout        time.Duration
	MaxRetries     uint64
	SourceVersion  string

	HTTPClient *http.Client
	Cache      ResponseCache
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// HTTPError is a non-2xx response from the Delivery API.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("delivery: %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("delivery: %s: HTTP %d", e.URL, e.StatusCode)
}

// Temporary reports whether the request may succeed if retried.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to the Delivery API of one project.
type Client struct {
	opts   Options
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer

	mu        sync.RWMutex
	resolvers map[string]ItemFactory
}

// New creates a Client, applying defaults for unset options.
func New(opts Options) (*Client, error) {
	if opts.ProjectID == "" {
		return nil, ErrProjectIDRequired
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PreviewBaseURL == "" {
		opts.PreviewBaseURL = DefaultPreviewBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.SourceVersion == "" {
		opts.SourceVersion = "dev"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		opts:      opts,
		http:      httpClient,
		logger:    logger.With("component", "delivery"),
		tracer:    otel.Tracer("kontentsource/delivery"),
		resolvers: make(map[string]ItemFactory),
	}, nil
}

// RegisterTypeResolver sets the factory used to wrap fetched items of the
// given content type. It must be called before items of that type are
// fetched; items without a registered factory are returned unwrapped.
func (c *Client) RegisterTypeResolver(codename string, factory ItemFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolvers[codename] = factory
}

func (c *Client) wrap(raw *Item) TypedItem {
	c.mu.RLock()
	factory, ok := c.resolvers[raw.System.Type]
	c.mu.RUnlock()
	if !ok {
		return raw
	}
	return factory(raw)
}

// ListContentTypes fetches the content type catalog.
func (c *Client) ListContentTypes(ctx context.Context) ([]ContentType, error) {
	var types []ContentType
	next := c.endpoint("types", nil)

	for next != "" {
		body, err := c.get(ctx, "types", next)
		if err != nil {
			return nil, fmt.Errorf("list content types: %w", err)
		}

		var page struct {
			Types []ContentType `json:"types"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode content types: %w", err)
		}
		types = append(types, page.Types...)
		next = gjson.GetBytes(body, "pagination.next_page").String()
	}

	return types, nil
}

// ListItems fetches all items of one content type. depth controls how many
// levels of linked items the API includes in the response.
func (c *Client) ListItems(ctx context.Context, typeCodename string, depth int) (*ItemsResponse, error) {
	q := url.Values{}
	q.Set("system.type", typeCodename)
	q.Set("depth", strconv.Itoa(depth))
	next := c.endpoint("items", q)

	var items []*Item
	var modular []*Item
	lookup := make(map[string]*Item)

	for next != "" {
		body, err := c.get(ctx, "items", next)
		if err != nil {
			return nil, fmt.Errorf("list items of type %s: %w", typeCodename, err)
		}

		page, err := decodeItemPage(body)
		if err != nil {
			return nil, fmt.Errorf("decode items of type %s: %w", typeCodename, err)
		}

		items = append(items, page.items...)
		for _, it := range page.modular {
			if _, seen := lookup[it.System.Codename]; seen {
				continue
			}
			lookup[it.System.Codename] = it
			modular = append(modular, it)
		}
		next = page.nextPage
	}

	// Items listed directly may also be referenced by their siblings.
	full := make(map[string]*Item, len(lookup)+len(items))
	for k, v := range lookup {
		full[k] = v
	}
	for _, it := range items {
		if _, ok := full[it.System.Codename]; !ok {
			full[it.System.Codename] = it
		}
	}

	missing := attachLinkedItems(items, full)
	missing = append(missing, attachLinkedItems(modular, full)...)
	if len(missing) > 0 {
		c.logger.Debug("linked items beyond requested depth",
			"type", typeCodename, "depth", depth, "codenames", missing)
	}

	wrapped := make([]TypedItem, 0, len(items))
	for _, it := range items {
		wrapped = append(wrapped, c.wrap(it))
	}
	linked := make([]TypedItem, 0, len(modular))
	for _, it := range modular {
		linked = append(linked, c.wrap(it))
	}

	return NewItemsResponse(wrapped, linked), nil
}

// ListTaxonomyGroups fetches every taxonomy group with its term tree.
func (c *Client) ListTaxonomyGroups(ctx context.Context) ([]TaxonomyGroup, error) {
	var groups []TaxonomyGroup
	next := c.endpoint("taxonomies", nil)

	for next != "" {
		body, err := c.get(ctx, "taxonomies", next)
		if err != nil {
			return nil, fmt.Errorf("list taxonomy groups: %w", err)
		}

		var page struct {
			Taxonomies []TaxonomyGroup `json:"taxonomies"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode taxonomy groups: %w", err)
		}
		groups = append(groups, page.Taxonomies...)
		next = gjson.GetBytes(body, "pagination.next_page").String()
	}

	return groups, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	base := c.opts.BaseURL
	if c.opts.UsePreview {
		base = c.opts.PreviewBaseURL
	}
	if c.opts.Language != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("language", c.opts.Language)
	}

	u := fmt.Sprintf("%s/%s/%s", base, url.PathEscape(c.opts.ProjectID), path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) cacheKey(u string) string {
	if c.opts.UsePreview {
		return "preview:" + u
	}
	return u
}

// get fetches one URL, consulting the response cache and retrying transient
// failures with exponential backoff.
func (c *Client) get(ctx context.Context, endpoint, u string) ([]byte, error) {
	if c.opts.Cache != nil {
		if body, ok := c.opts.Cache.Get(ctx, c.cacheKey(u)); ok {
			c.logger.Debug("delivery cache hit", "url", u)
			return body, nil
		}
	}

	ctx, span := c.tracer.Start(ctx, "delivery."+endpoint,
		trace.WithAttributes(attribute.String("http.url", u)))
	defer span.End()

	start := time.Now()
	var body []byte

	b := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		body, err = c.fetch(ctx, u)
		if err == nil {
			return nil
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Temporary() {
			return err
		}
		c.logger.Warn("delivery request failed, retrying", "url", u, "error", err)
		return retry.RetryableError(err)
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.opts.Metrics.ObserveFetch(endpoint, outcome, time.Since(start))

	if err != nil {
		return nil, err
	}

	if c.opts.Cache != nil {
		c.opts.Cache.Set(ctx, c.cacheKey(u), body)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(sourceHeader, "kontentsource;"+c.opts.SourceVersion)
	switch {
	case c.opts.UsePreview && c.opts.PreviewAPIKey != "":
		req.Header.Set("Authorization", "Bearer "+c.opts.PreviewAPIKey)
	case !c.opts.UsePreview && c.opts.SecuredAPIKey != "":
		req.Header.Set("Authorization", "Bearer "+c.opts.SecuredAPIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Message:    gjson.GetBytes(body, "message").String(),
		}
	}
	return body, nil
}
