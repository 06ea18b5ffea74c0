package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ms-events/internal/logger"
	"ms-events/internal/models"
)

// Client talks to the stats service. Hit recording failures are returned to
// the caller to log and swallow; Views goes through the Redis cache first
// when one is configured.
type Client struct {
	BaseURL string
	App     string
	HTTP    *http.Client
	Cache   *Cache
	Logger  *logger.Logger
}

func New(baseURL, app string, httpClient *http.Client, cache *Cache, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		App:     app,
		HTTP:    httpClient,
		Cache:   cache,
		Logger:  log,
	}
}

// Hit records one view of uri by ip with the configured app name.
func (c *Client) Hit(ctx context.Context, uri, ip string) error {
	dto := models.EndpointHitDto{
		App:       c.App,
		URI:       uri,
		IP:        ip,
		Timestamp: models.NewDateTime(time.Now()),
	}

	body, err := json.Marshal(dto)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("stats service returned %d for hit", resp.StatusCode)
	}
	return nil
}

// Views returns hit counts keyed by uri for the given window. URIs the stats
// service knows nothing about are simply absent from the map.
func (c *Client) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	if len(uris) == 0 {
		return map[string]int64{}, nil
	}

	views := make(map[string]int64)
	missing := uris

	if c.Cache != nil {
		cached, miss, err := c.Cache.Get(ctx, uris, unique)
		if err != nil {
			c.Logger.Warn("STATS", fmt.Sprintf("view cache read failed: %v", err))
		} else {
			views = cached
			missing = miss
		}
		if len(missing) == 0 {
			return views, nil
		}
	}

	fetched, err := c.fetchStats(ctx, start, end, missing, unique)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]int64, len(missing))
	for _, uri := range missing {
		hits := fetched[uri]
		views[uri] = hits
		fresh[uri] = hits
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, fresh, unique); err != nil {
			c.Logger.Warn("STATS", fmt.Sprintf("view cache write failed: %v", err))
		}
	}

	return views, nil
}

func (c *Client) fetchStats(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	params := url.Values{}
	params.Set("start", start.Format(models.DateTimeLayout))
	params.Set("end", end.Format(models.DateTimeLayout))
	params.Set("uris", strings.Join(uris, ","))
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned %d for stats", resp.StatusCode)
	}

	var stats []models.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(stats))
	for _, s := range stats {
		result[s.URI] = s.Hits
	}
	return result, nil
}

// EventURI is the uri under which an event's public page is recorded.
func EventURI(eventID int64) string {
	return "/events/" + strconv.FormatInt(eventID, 10)
}
