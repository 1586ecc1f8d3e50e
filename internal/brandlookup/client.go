// Package brandlookup queries the hosted brand-data service for the public
// assets of a domain (logos, colors, fonts).
package brandlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the provider has no data for a domain.
var ErrNotFound = errors.New("brand not found")

// Profile is the provider's view of a brand.
type Profile struct {
	Name        string  `json:"name"`
	Domain      string  `json:"domain"`
	Description string  `json:"description"`
	Logos       []Logo  `json:"logos"`
	Colors      []Color `json:"colors"`
	Fonts       []Font  `json:"fonts"`
}

type Logo struct {
	URL    string `json:"url"`
	Kind   string `json:"type"`  // icon, wordmark, full
	Theme  string `json:"theme"` // light, dark
	Format string `json:"format"`
}

type Color struct {
	Hex  string `json:"hex"`
	Kind string `json:"type"` // primary, secondary, accent
}

type Font struct {
	Family string `json:"name"`
	Usage  string `json:"type"`   // heading, body
	Source string `json:"origin"` // google, custom
}

// Client calls the brand-data lookup API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a lookup client. An empty baseURL leaves the client
// unconfigured; Lookup then fails fast.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether the provider is set up.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Lookup fetches the brand profile for a domain.
func (c *Client) Lookup(ctx context.Context, domain string) (*Profile, error) {
	if !c.Configured() {
		return nil, errors.New("brand lookup not configured")
	}
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/brands/%s", c.baseURL, url.PathEscape(domain)), nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brand lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("brand lookup returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if profile.Domain == "" {
		profile.Domain = domain
	}
	return &profile, nil
}

// FetchAsset downloads a logo file from the URL the provider returned.
// The caller must close the reader.
func (c *Client) FetchAsset(ctx context.Context, assetURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build asset request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch asset: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("asset fetch returned %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
