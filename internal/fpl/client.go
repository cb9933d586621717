// Package fpl is the input adapter: it fetches the Fantasy Premier League
// bootstrap-static payload and normalizes it into catalog records.
package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const bootstrapPath = "/api/bootstrap-static/"

// Cache stores raw payloads between fetches. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Client fetches player data from the FPL API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
	logger     *logrus.Logger
}

// NewClient creates an FPL API client. cache may be nil.
func NewClient(baseURL string, cache Cache, log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		cache:      cache,
		logger:     log,
	}
}

type bootstrapResponse struct {
	Elements     []element     `json:"elements"`
	Teams        []team        `json:"teams"`
	ElementTypes []elementType `json:"element_types"`
}

type element struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	NowCost     int    `json:"now_cost"`
	TotalPoints int    `json:"total_points"`
	Form        string `json:"form"`
}

type team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type elementType struct {
	ID           int    `json:"id"`
	SingularName string `json:"singular_name"`
}

// fetchBootstrap returns the raw bootstrap-static payload, from cache when
// available.
func (c *Client) fetchBootstrap(ctx context.Context) ([]byte, error) {
	const cacheKey = "bootstrap-static"

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			c.logger.WithField("bytes", len(body)).Debug("Bootstrap payload served from cache")
			return body, nil
		}
	}

	url := c.baseURL + bootstrapPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building bootstrap request: %w", err)
	}

	c.logger.WithField("url", url).Debug("Fetching FPL bootstrap data")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching bootstrap data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bootstrap request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap response: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, body)
	}
	return body, nil
}

func decodeBootstrap(body []byte) (*bootstrapResponse, error) {
	var payload bootstrapResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding bootstrap payload: %w", err)
	}
	if len(payload.Elements) == 0 {
		return nil, fmt.Errorf("bootstrap payload contains no players")
	}
	return &payload, nil
}
