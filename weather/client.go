// Copyright (c) Microsoft. All rights reserved.

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com"
	DefaultForecastURL  = "https://api.open-meteo.com"

	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,wind_gusts_10m,weather_code"
)

// Reading is the current weather at a resolved location.
type Reading struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	WindGust    float64 `json:"windGust"`
	Conditions  string  `json:"conditions"`
	Location    string  `json:"location"`
}

// Client talks to the Open-Meteo geocoding and forecast APIs.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithGeocodingURL overrides the geocoding API base URL.
func WithGeocodingURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.geocodingURL = strings.TrimRight(u, "/")
		}
	}
}

// WithForecastURL overrides the forecast API base URL.
func WithForecastURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.forecastURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient creates a Client pointed at the public Open-Meteo endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   http.DefaultClient,
		geocodingURL: DefaultGeocodingURL,
		forecastURL:  DefaultForecastURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

type geocodingResponse struct {
	Results []place `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Time                string  `json:"time"`
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
		WindGusts10m        float64 `json:"wind_gusts_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
}

// Lookup geocodes location and returns the current weather there.
//
// Geocoding tries the full text first, then the part before the first comma
// ("Camden, NJ" becomes "Camden"), then a wider search over the full text.
// If all three come back empty the error wraps [af.ErrNotFound].
func (c *Client) Lookup(ctx context.Context, location string) (*Reading, error) {
	p, err := c.resolve(ctx, location)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	q.Set("current", currentFields)

	var fr forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"/v1/forecast?"+q.Encode(), &fr); err != nil {
		return nil, err
	}

	cur := fr.Current
	return &Reading{
		Temperature: cur.Temperature2m,
		FeelsLike:   cur.ApparentTemperature,
		Humidity:    cur.RelativeHumidity2m,
		WindSpeed:   cur.WindSpeed10m,
		WindGust:    cur.WindGusts10m,
		Conditions:  Condition(cur.WeatherCode),
		Location:    p.Name,
	}, nil
}

func (c *Client) resolve(ctx context.Context, location string) (*place, error) {
	p, err := c.geocode(ctx, location, 1)
	if err != nil || p != nil {
		return p, err
	}

	if city, _, ok := strings.Cut(location, ","); ok {
		city = strings.TrimSpace(city)
		slog.DebugContext(ctx, "geocoding retry without region", "location", location, "city", city)
		if p, err = c.geocode(ctx, city, 1); err != nil || p != nil {
			return p, err
		}
	}

	if p, err = c.geocode(ctx, location, 5); err != nil || p != nil {
		return p, err
	}

	return nil, af.Errorf(af.ErrNotFound,
		"Location '%s' not found. Please try a different location name or a major city nearby.", location)
}

func (c *Client) geocode(ctx context.Context, name string, count int) (*place, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", strconv.Itoa(count))

	var gr geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL+"/v1/search?"+q.Encode(), &gr); err != nil {
		return nil, err
	}
	if len(gr.Results) == 0 {
		return nil, nil
	}
	return &gr.Results[0], nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &af.ServiceError{Service: "open-meteo", Message: err.Error(), Err: af.ErrService}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read open-meteo response: %v", af.ErrService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Reason string `json:"reason"`
		}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Reason
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return &af.ServiceError{
			Service:    "open-meteo",
			StatusCode: resp.StatusCode,
			Message:    msg,
			Err:        af.ErrService,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode open-meteo response: %v", af.ErrInvalidResponse, err)
	}
	return nil
}
