package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/TheJproject/weather-chatbot/internal/models"
	"github.com/TheJproject/weather-chatbot/pkg/observe"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultArchiveURL   = "https://archive-api.open-meteo.com/v1/archive"

	dailyParams = "temperature_2m_max,temperature_2m_min,sunrise,sunset," +
		"sunshine_duration,daylight_duration,wind_speed_10m_max," +
		"precipitation_sum,weather_code"
	hourlyParams = "temperature_2m,wind_speed_10m,precipitation,weather_code,is_day"

	defaultMaxRetries = 3
	defaultRPS        = 5.0
	defaultBurst      = 5
)

// HTTPClient is the subset of http.Client the weather client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig carries the endpoint URLs and outbound-call policy. Zero
// values fall back to the public Open-Meteo endpoints and defaults.
type ClientConfig struct {
	GeocodingURL      string
	ForecastURL       string
	ArchiveURL        string
	RequestsPerSecond float64
	Burst             int
	MaxRetries        uint64
}

// Client calls the Open-Meteo geocoding, forecast, and archive APIs and
// normalizes their column-oriented payloads into row records. It keeps no
// state between calls and is safe for concurrent use.
type Client struct {
	geocodingURL string
	forecastURL  string
	archiveURL   string

	httpClient HTTPClient
	limiter    *rate.Limiter
	maxRetries uint64
	l          *observe.Logger
}

func NewClient(cfg ClientConfig, l *observe.Logger, httpClient HTTPClient) *Client {
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultGeocodingURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
		archiveURL:   cfg.ArchiveURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:   cfg.MaxRetries,
		l:            l,
	}
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Geocode resolves a free-text place name to coordinates using the top-ranked
// result. An empty result set fails with ErrLocationNotFound.
func (c *Client) Geocode(ctx context.Context, query string) (models.GeoLocation, error) {
	u := fmt.Sprintf("%s?name=%s&count=1&language=en", c.geocodingURL, url.QueryEscape(query))

	c.l.Info("making geocoding API request", map[string]any{"query": query})

	body, err := c.get(ctx, u)
	if err != nil {
		return models.GeoLocation{}, err
	}

	var payload struct {
		Results []geocodingResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.GeoLocation{}, &MalformedResponseError{Reason: fmt.Sprintf("failed to parse geocoding response: %v", err)}
	}

	if len(payload.Results) == 0 {
		c.l.Warning("geocoding returned no results", map[string]any{"query": query})
		return models.GeoLocation{}, ErrLocationNotFound
	}

	r := payload.Results[0]
	if r.Timezone == "" {
		r.Timezone = "UTC"
	}

	loc := models.GeoLocation{
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Country:   r.Country,
		Timezone:  r.Timezone,
	}

	c.l.Info("geocoded location", map[string]any{
		"name": loc.Name,
		"lat":  loc.Latitude,
		"lon":  loc.Longitude,
	})

	return loc, nil
}

// Forecast fetches daily and hourly weather for the date span from the
// forecast endpoint. The span may be a single day.
func (c *Client) Forecast(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error) {
	return c.fetchWeather(ctx, c.forecastURL, models.QueryForecast, loc, start, end)
}

// Historical fetches daily and hourly weather for the date span from the
// archive endpoint. Same contract and parsing path as Forecast.
func (c *Client) Historical(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error) {
	return c.fetchWeather(ctx, c.archiveURL, models.QueryHistorical, loc, start, end)
}

func (c *Client) fetchWeather(ctx context.Context, baseURL string, kind models.QueryKind, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error) {
	resp := models.WeatherResponse{
		Location:  loc,
		Kind:      kind,
		StartDate: start,
		EndDate:   end,
	}

	u := fmt.Sprintf("%s?latitude=%f&longitude=%f&timezone=%s&daily=%s&hourly=%s&start_date=%s&end_date=%s",
		baseURL, loc.Latitude, loc.Longitude, url.QueryEscape(loc.Timezone),
		dailyParams, hourlyParams,
		start.Format(dailyTimeLayout), end.Format(dailyTimeLayout))

	c.l.Info("making weather API request", map[string]any{
		"kind":  kind,
		"lat":   loc.Latitude,
		"lon":   loc.Longitude,
		"start": start.Format(dailyTimeLayout),
		"end":   end.Format(dailyTimeLayout),
	})

	body, err := c.get(ctx, u)
	if err != nil {
		return resp, err
	}

	var payload struct {
		Daily  DailyColumns  `json:"daily"`
		Hourly HourlyColumns `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return resp, &MalformedResponseError{Reason: fmt.Sprintf("failed to parse weather response: %v", err)}
	}

	daily, err := ParseDaily(payload.Daily)
	if err != nil {
		return resp, err
	}
	hourly, err := ParseHourly(payload.Hourly)
	if err != nil {
		return resp, err
	}

	resp.Daily = daily
	resp.Hourly = hourly

	c.l.Info("parsed weather response", map[string]any{
		"kind":   kind,
		"daily":  len(daily),
		"hourly": len(hourly),
	})

	return resp, nil
}

// get performs one rate-limited GET with bounded exponential-backoff retry.
// Connection errors, 429, and 5xx are retried; any other non-200 status is
// permanent. Whatever survives the retry budget comes back as a
// TransportError.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)

	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		return c.getOnce(ctx, u)
	}, b, func(err error, wait time.Duration) {
		c.l.Warning("retrying weather API request", map[string]any{
			"err":  err.Error(),
			"wait": wait.String(),
		})
	})
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		c.l.Error(err, map[string]any{"url": u})
		return nil, err
	}

	return body, nil
}

func (c *Client) getOnce(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("rate limit wait canceled: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	httpErr := &TransportError{
		Status: resp.StatusCode,
		Err:    fmt.Errorf("HTTP error: %s", resp.Status),
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, httpErr
	}

	// 4xx will not get better on retry.
	return nil, backoff.Permanent(httpErr)
}
