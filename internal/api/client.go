package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/region"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

const defaultBaseURL = "https://bimasislam.kemenag.go.id"

const (
	pathSchedulePage = "/jadwalshalat"
	pathRegencies    = "/ajax/getKabkoshalat"
	pathMonth        = "/ajax/getShalatbln"
)

var (
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("transport error")

	// ErrParse covers responses that cannot be understood.
	ErrParse = errors.New("parse error")
)

// browserHeaders makes requests look like the site's own XHR calls.
// The AJAX endpoints refuse requests that do not.
var browserHeaders = map[string]string{
	"Accept":             "*/*",
	"Accept-Language":    "en-US,en;q=0.8",
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
	"Sec-GPC":            "1",
	"User-Agent":         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"X-Requested-With":   "XMLHttpRequest",
	"sec-ch-ua":          `"Brave";v="117", "Not;A=Brand";v="8", "Chromium";v="117"`,
	"sec-ch-ua-platform": `"Linux"`,
}

// Client talks to the bimasislam.kemenag.go.id prayer schedule site.
// It implements region.Source and schedule.Source.
type Client struct {
	httpClient *http.Client
	// BaseURL is the site root. Defaults to bimasislam.kemenag.go.id.
	// Exported for testing with httptest.
	BaseURL string

	sessionReady bool
}

var (
	_ region.Source   = (*Client)(nil)
	_ schedule.Source = (*Client)(nil)
)

// NewClient creates a client with a cookie jar and a request timeout.
func NewClient() *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with these options.
		panic(err)
	}
	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// FetchAll downloads every province and, for each, its regencies.
func (c *Client) FetchAll(ctx context.Context) (region.Catalog, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, pathSchedulePage, nil)
	if err != nil {
		return nil, fmt.Errorf("loading provinces: %w", err)
	}
	provinces, err := parseProvinces(body)
	if err != nil {
		return nil, err
	}

	var catalog region.Catalog
	for _, p := range provinces {
		form := url.Values{"x": {p.Value}}
		body, err := c.do(ctx, http.MethodPost, pathRegencies, form)
		if err != nil {
			return nil, fmt.Errorf("loading regencies of %s: %w", p.Label, err)
		}
		regencies, err := parseOptions(body)
		if err != nil {
			return nil, fmt.Errorf("regencies of %s: %w", p.Label, err)
		}
		for _, r := range regencies {
			catalog = append(catalog, region.Region{
				Province:      p.Label,
				ProvinceToken: p.Value,
				Regency:       r.Label,
				RegencyToken:  r.Value,
			})
		}
	}

	return catalog, nil
}

// FetchMonth downloads one month of schedule data for reg.
func (c *Client) FetchMonth(ctx context.Context, reg region.Region, year, month int) (schedule.Month, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	form := url.Values{
		"x":   {reg.ProvinceToken},
		"y":   {reg.RegencyToken},
		"bln": {strconv.Itoa(month)},
		"thn": {strconv.Itoa(year)},
	}
	body, err := c.do(ctx, http.MethodPost, pathMonth, form)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	return parseMonthResponse(body)
}

// ensureSession visits the home page once so the server hands out the
// session cookies the AJAX endpoints require.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.sessionReady {
		return nil
	}
	if _, err := c.do(ctx, http.MethodGet, "/", nil); err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	c.sessionReady = true
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.BaseURL, "/")+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Origin", c.BaseURL)
	req.Header.Set("Referer", strings.TrimSuffix(c.BaseURL, "/")+pathSchedulePage)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrTransport, method, path, resp.StatusCode)
	}

	return data, nil
}
