// Package catalog talks to the remote photo search API.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
	"github.com/Oxyrus/virtualtourist/internal/geo"
)

// DefaultMaxBodySize caps search responses and downloaded images.
const DefaultMaxBodySize = 32 << 20

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Method     string
	ImageField string
	PerPage    int
	MaxPages   int
	// MaxBodySize rejects larger responses with a protocol error.
	MaxBodySize int64
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client issues search and image requests. It holds no per-request state and
// is safe for concurrent use. No request is ever retried.
type Client struct {
	baseURL    string
	apiKey     string
	method     string
	imageField string
	perPage    int
	maxPages   int
	maxBody    int64
	http       *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		method:     opts.Method,
		imageField: opts.ImageField,
		perPage:    opts.PerPage,
		maxPages:   opts.MaxPages,
		maxBody:    opts.MaxBodySize,
		http:       opts.HTTPClient,
		logger:     opts.Logger,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.method == "" {
		c.method = DefaultMethod
	}
	if c.imageField == "" {
		c.imageField = DefaultImageField
	}
	if c.perPage <= 0 {
		c.perPage = DefaultPerPage
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}
	if c.maxBody <= 0 {
		c.maxBody = DefaultMaxBodySize
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	return c
}

// MaxPages returns the page count cap applied to search results.
func (c *Client) MaxPages() int {
	return c.maxPages
}

// Params builds the search parameters for a box. A zero page asks for the
// first page and is used to read the pagination summary.
func (c *Client) Params(box geo.Box, page int) SearchParams {
	return SearchParams{
		Method:     c.method,
		APIKey:     c.apiKey,
		BBox:       box.String(),
		SafeSearch: "1",
		Extras:     c.imageField,
		Format:     "json",
		NoCallback: "1",
		PerPage:    c.perPage,
		Page:       page,
	}
}

// SearchURL returns the full request URL for p.
func (c *Client) SearchURL(p SearchParams) string {
	return c.baseURL + p.Encode()
}

// FetchPageCount reads the number of result pages for the box, clamped to
// MaxPages, and the total number of matching photos.
func (c *Client) FetchPageCount(ctx context.Context, box geo.Box) (PageCount, error) {
	body, err := c.search(ctx, "page_count", c.Params(box, 0))
	if err != nil {
		return PageCount{}, err
	}

	pc, err := decodePageCount(body, c.maxPages)
	if err != nil {
		observe("page_count", "protocol_error")
		return PageCount{}, err
	}

	observe("page_count", "ok")
	c.logger.Debug("page count fetched", "bbox", box.String(), "pages", pc.Pages, "total", pc.Total)
	return pc, nil
}

// FetchPage returns the photos on one page of the search. A search with no
// results yields an empty slice and no error.
func (c *Client) FetchPage(ctx context.Context, box geo.Box, page int) ([]PhotoMeta, error) {
	if page < 1 {
		return nil, apperr.Precondition(fmt.Sprintf("page %d is out of range", page))
	}

	body, err := c.search(ctx, "page", c.Params(box, page))
	if err != nil {
		return nil, err
	}

	photos, err := decodePage(body, c.imageField)
	if err != nil {
		observe("page", "protocol_error")
		return nil, err
	}

	observe("page", "ok")
	c.logger.Debug("page fetched", "bbox", box.String(), "page", page, "photos", len(photos))
	return photos, nil
}

// FetchImage downloads the raw bytes at url.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	body, status, err := c.get(ctx, url)
	if apperr.IsKind(err, apperr.KindProtocol) {
		observe("image", "protocol_error")
		return nil, err
	}
	if err != nil {
		observe("image", "transport_error")
		return nil, apperr.Transport("image download failed", err)
	}
	if status < 200 || status > 299 {
		observe("image", "protocol_error")
		return nil, apperr.Protocol("image download returned status %d", status)
	}

	observe("image", "ok")
	return body, nil
}

func (c *Client) search(ctx context.Context, op string, p SearchParams) ([]byte, error) {
	body, status, err := c.get(ctx, c.SearchURL(p))
	if apperr.IsKind(err, apperr.KindProtocol) {
		observe(op, "protocol_error")
		return nil, err
	}
	if err != nil {
		observe(op, "transport_error")
		return nil, apperr.Transport("search request failed", err)
	}

	if status < 200 || status > 299 {
		observe(op, "protocol_error")
		if msg := statusMessage(body); msg != "" {
			return nil, apperr.Protocol("search returned status %d: %s", status, msg)
		}
		return nil, apperr.Protocol("search returned status %d: %s", status, snippet(body))
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, 0, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, resp.StatusCode, apperr.Protocol("response body exceeds %d bytes", c.maxBody)
	}

	c.logger.Debug("catalog request completed", "url", redact(url, c.apiKey), "status", resp.StatusCode, "bytes", len(body))
	return body, resp.StatusCode, nil
}

func redact(url, secret string) string {
	if secret == "" {
		return url
	}
	return strings.ReplaceAll(url, secret, "REDACTED")
}
