// Package designimport pulls frame renders out of the hosted design tool so
// they can be stored as card templates.
package designimport

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
)

// Frame is one exportable frame in a design file.
type Frame struct {
	NodeID string  `json:"nodeId"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Client calls the design-tool REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a design API client. An empty token leaves it unconfigured.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the design API is set up.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build design request: %w", err)
	}
	req.Header.Set("X-Api-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("design api: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("design api returned %d", resp.StatusCode)
	}
	return resp, nil
}

// ListFrames returns the top-level frames of a design file.
func (c *Client) ListFrames(ctx context.Context, fileKey string) ([]Frame, error) {
	if !c.Configured() {
		return nil, errors.New("design api not configured")
	}
	if fileKey == "" {
		return nil, errors.New("file key is required")
	}

	resp, err := c.get(ctx, "/v1/files/"+url.PathEscape(fileKey))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Document struct {
			Children []struct {
				Children []struct {
					ID          string `json:"id"`
					Name        string `json:"name"`
					Type        string `json:"type"`
					BoundingBox struct {
						Width  float64 `json:"width"`
						Height float64 `json:"height"`
					} `json:"absoluteBoundingBox"`
				} `json:"children"`
			} `json:"children"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode file response: %w", err)
	}

	frames := make([]Frame, 0)
	for _, page := range out.Document.Children {
		for _, node := range page.Children {
			if node.Type != "FRAME" {
				continue
			}
			frames = append(frames, Frame{
				NodeID: node.ID,
				Name:   node.Name,
				Width:  node.BoundingBox.Width,
				Height: node.BoundingBox.Height,
			})
		}
	}
	return frames, nil
}

// RenderFrames asks the design tool to rasterize frames and returns node ID
// to image URL.
func (c *Client) RenderFrames(ctx context.Context, fileKey string, nodeIDs []string) (map[string]string, error) {
	if !c.Configured() {
		return nil, errors.New("design api not configured")
	}
	if len(nodeIDs) == 0 {
		return nil, errors.New("at least one frame is required")
	}

	path := fmt.Sprintf("/v1/images/%s?ids=%s&format=png&scale=2",
		url.PathEscape(fileKey), url.QueryEscape(strings.Join(nodeIDs, ",")))
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Err    string            `json:"err"`
		Images map[string]string `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode images response: %w", err)
	}
	if out.Err != "" {
		return nil, fmt.Errorf("design api render error: %s", out.Err)
	}
	return out.Images, nil
}

// FetchImage downloads a rendered frame. The caller must close the reader.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}
	return resp.Body, nil
}
