package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"

	"github.com/TheJproject/weather-chatbot/internal/models"
)

const dateLayout = "2006-01-02"

// maxForecastDays is the longest range the forecast endpoint serves.
const maxForecastDays = 16

// Tool is the contract between the orchestration loop and a callable
// operation: a name, a description, a JSON schema for the arguments, and an
// executor that returns a string result for the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() openai.FunctionParameters
	Execute(ctx context.Context, arguments string) (string, error)
}

// WeatherService is the data-access surface the tools delegate to.
type WeatherService interface {
	Geocode(ctx context.Context, query string) (models.GeoLocation, error)
	Forecast(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error)
	Historical(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error)
}

// RetryableError tells the orchestration layer that a tool call failed in a
// way worth retrying or explaining to the user, as opposed to a fatal halt.
// Its message is fed back to the model as the tool result.
type RetryableError struct {
	Msg string
	Err error
}

func (e *RetryableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Tools returns the three weather tools backed by the given service.
func Tools(service WeatherService) []Tool {
	return []Tool{
		&geocodeTool{service: service},
		&forecastTool{service: service},
		&historicalTool{service: service},
	}
}

type geocodeTool struct {
	service WeatherService
}

func (*geocodeTool) Name() string {
	return "get_location_coordinates"
}

func (*geocodeTool) Description() string {
	return "Look up the latitude, longitude, and timezone for a city name. Always call this first before fetching weather data."
}

func (*geocodeTool) Parameters() openai.FunctionParameters {
	return openai.FunctionParameters{
		"type": "object",
		"properties": map[string]any{
			"city_name": map[string]string{
				"type":        "string",
				"description": "Name of the city to geocode (e.g. 'Copenhagen', 'London')",
			},
		},
		"required": []string{"city_name"},
	}
}

func (t *geocodeTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		CityName string `json:"city_name"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", &RetryableError{Msg: "invalid arguments for get_location_coordinates", Err: err}
	}
	if args.CityName == "" {
		return "", &RetryableError{Msg: "city_name is required"}
	}

	loc, err := t.service.Geocode(ctx, args.CityName)
	if err != nil {
		return "", &RetryableError{Msg: fmt.Sprintf("could not find location %q", args.CityName), Err: err}
	}

	return marshalResult(loc)
}

type forecastTool struct {
	service WeatherService
}

func (*forecastTool) Name() string {
	return "get_weather_forecast"
}

func (*forecastTool) Description() string {
	return "Get daily and hourly weather forecast for a location and date range. Use this for today's weather and forecasts up to 16 days ahead."
}

func (*forecastTool) Parameters() openai.FunctionParameters {
	return weatherRangeParameters()
}

func (t *forecastTool) Execute(ctx context.Context, arguments string) (string, error) {
	loc, start, end, err := parseWeatherRangeArgs(arguments)
	if err != nil {
		return "", err
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxForecastDays {
		return "", &RetryableError{Msg: fmt.Sprintf("forecast range is %d days, at most %d are available; use get_historical_weather for past data", days, maxForecastDays)}
	}

	resp, err := t.service.Forecast(ctx, loc, start, end)
	if err != nil {
		return "", &RetryableError{Msg: "forecast request failed", Err: err}
	}

	return marshalResult(resp)
}

type historicalTool struct {
	service WeatherService
}

func (*historicalTool) Name() string {
	return "get_historical_weather"
}

func (*historicalTool) Description() string {
	return "Get historical weather data for a location and date range. Use this for past weather and comparisons. Data is available from 1940 to about 5 days ago."
}

func (*historicalTool) Parameters() openai.FunctionParameters {
	return weatherRangeParameters()
}

func (t *historicalTool) Execute(ctx context.Context, arguments string) (string, error) {
	loc, start, end, err := parseWeatherRangeArgs(arguments)
	if err != nil {
		return "", err
	}

	resp, err := t.service.Historical(ctx, loc, start, end)
	if err != nil {
		return "", &RetryableError{Msg: "historical weather request failed", Err: err}
	}

	return marshalResult(resp)
}

func weatherRangeParameters() openai.FunctionParameters {
	return openai.FunctionParameters{
		"type": "object",
		"properties": map[string]any{
			"latitude": map[string]string{
				"type":        "number",
				"description": "Location latitude from geocoding (-90 to 90)",
			},
			"longitude": map[string]string{
				"type":        "number",
				"description": "Location longitude from geocoding (-180 to 180)",
			},
			"timezone": map[string]string{
				"type":        "string",
				"description": "Location timezone from geocoding (e.g. 'Europe/Copenhagen')",
			},
			"start_date": map[string]string{
				"type":        "string",
				"description": "Start date in ISO format (YYYY-MM-DD)",
			},
			"end_date": map[string]string{
				"type":        "string",
				"description": "End date in ISO format (YYYY-MM-DD), may equal start_date",
			},
		},
		"required": []string{"latitude", "longitude", "timezone", "start_date", "end_date"},
	}
}

// parseWeatherRangeArgs validates the shared argument shape of the forecast
// and historical tools before any HTTP call is attempted. Coordinates are
// pointers so a missing field is distinguishable from zero.
func parseWeatherRangeArgs(arguments string) (models.GeoLocation, time.Time, time.Time, error) {
	var args struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Timezone  string   `json:"timezone"`
		StartDate string   `json:"start_date"`
		EndDate   string   `json:"end_date"`
	}

	var zero time.Time
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: "invalid tool arguments", Err: err}
	}

	if args.Latitude == nil || args.Longitude == nil {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: "latitude and longitude are required; geocode the city first"}
	}

	loc := models.GeoLocation{
		Latitude:  *args.Latitude,
		Longitude: *args.Longitude,
		Timezone:  args.Timezone,
	}
	if loc.Timezone == "" {
		loc.Timezone = "UTC"
	}
	if err := loc.Validate(); err != nil {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: "invalid coordinates", Err: err}
	}

	start, err := time.Parse(dateLayout, args.StartDate)
	if err != nil {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: fmt.Sprintf("invalid start_date %q, want YYYY-MM-DD", args.StartDate)}
	}
	end, err := time.Parse(dateLayout, args.EndDate)
	if err != nil {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: fmt.Sprintf("invalid end_date %q, want YYYY-MM-DD", args.EndDate)}
	}
	if end.Before(start) {
		return models.GeoLocation{}, zero, zero, &RetryableError{Msg: "end_date must not be before start_date"}
	}

	return loc, start, end, nil
}

func marshalResult(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", &RetryableError{Msg: "failed to encode tool result", Err: err}
	}
	return string(out), nil
}
