package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJproject/weather-chatbot/internal/agent"
	"github.com/TheJproject/weather-chatbot/internal/models"
	"github.com/TheJproject/weather-chatbot/internal/openmeteo"
)

// MockWeatherService implements agent.WeatherService for testing
type MockWeatherService struct {
	geocodeResult models.GeoLocation
	geocodeErr    error
	weatherResult models.WeatherResponse
	weatherErr    error

	geocodeCalls    int
	forecastCalls   int
	historicalCalls int
	lastStart       time.Time
	lastEnd         time.Time
}

func (m *MockWeatherService) Geocode(ctx context.Context, query string) (models.GeoLocation, error) {
	m.geocodeCalls++
	return m.geocodeResult, m.geocodeErr
}

func (m *MockWeatherService) Forecast(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error) {
	m.forecastCalls++
	m.lastStart, m.lastEnd = start, end
	return m.weatherResult, m.weatherErr
}

func (m *MockWeatherService) Historical(ctx context.Context, loc models.GeoLocation, start, end time.Time) (models.WeatherResponse, error) {
	m.historicalCalls++
	m.lastStart, m.lastEnd = start, end
	return m.weatherResult, m.weatherErr
}

func findTool(t *testing.T, tools []agent.Tool, name string) agent.Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func TestTools_Registration(t *testing.T) {
	tools := agent.Tools(&MockWeatherService{})
	require.Len(t, tools, 3)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Description())
		assert.NotEmpty(t, tool.Parameters())
	}

	assert.ElementsMatch(t, names, []string{
		"get_location_coordinates",
		"get_weather_forecast",
		"get_historical_weather",
	})
}

func TestGeocodeTool_Success(t *testing.T) {
	service := &MockWeatherService{
		geocodeResult: models.GeoLocation{
			Name:      "Copenhagen",
			Latitude:  55.6759,
			Longitude: 12.5655,
			Country:   "Denmark",
			Timezone:  "Europe/Copenhagen",
		},
	}
	tool := findTool(t, agent.Tools(service), "get_location_coordinates")

	result, err := tool.Execute(context.Background(), `{"city_name": "Copenhagen"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.geocodeCalls)

	var loc models.GeoLocation
	require.NoError(t, json.Unmarshal([]byte(result), &loc))
	assert.Equal(t, service.geocodeResult, loc)
}

func TestGeocodeTool_MissingCity(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_location_coordinates")

	_, err := tool.Execute(context.Background(), `{}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 0, service.geocodeCalls, "validation must happen before the service call")
}

func TestGeocodeTool_NotFound(t *testing.T) {
	service := &MockWeatherService{geocodeErr: openmeteo.ErrLocationNotFound}
	tool := findTool(t, agent.Tools(service), "get_location_coordinates")

	_, err := tool.Execute(context.Background(), `{"city_name": "Nowhereville"}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.ErrorIs(t, err, openmeteo.ErrLocationNotFound)
	assert.Contains(t, retry.Error(), "Nowhereville")
}

func TestForecastTool_Success(t *testing.T) {
	temp := 7.5
	service := &MockWeatherService{
		weatherResult: models.WeatherResponse{
			Kind:  models.QueryForecast,
			Daily: []models.DailyWeather{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TemperatureMax: &temp}},
		},
	}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	result, err := tool.Execute(context.Background(), `{
		"latitude": 55.6759, "longitude": 12.5655, "timezone": "Europe/Copenhagen",
		"start_date": "2024-01-01", "end_date": "2024-01-02"
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.forecastCalls)
	assert.Equal(t, "2024-01-01", service.lastStart.Format("2006-01-02"))
	assert.Equal(t, "2024-01-02", service.lastEnd.Format("2006-01-02"))
	assert.Contains(t, result, `"temperature_2m_max":7.5`)
}

func TestForecastTool_MissingCoordinates(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{"timezone": "UTC", "start_date": "2024-01-01", "end_date": "2024-01-02"}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 0, service.forecastCalls)
	assert.Contains(t, retry.Error(), "geocode")
}

func TestForecastTool_InvalidCoordinates(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{
		"latitude": 123.0, "longitude": 0.0, "timezone": "UTC",
		"start_date": "2024-01-01", "end_date": "2024-01-02"
	}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 0, service.forecastCalls)
}

func TestForecastTool_ReversedDateRange(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2024-01-05", "end_date": "2024-01-01"
	}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 0, service.forecastCalls)
}

func TestForecastTool_SingleDayRange(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2024-01-01", "end_date": "2024-01-01"
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.forecastCalls)
}

func TestForecastTool_RangeTooLong(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2024-01-01", "end_date": "2024-01-31"
	}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)
	assert.Equal(t, 0, service.forecastCalls, "out-of-range requests must not reach the service")
	assert.Contains(t, retry.Error(), "16")
}

func TestForecastTool_MaxRangeAccepted(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	// 2024-01-01 through 2024-01-16 is exactly 16 days.
	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2024-01-01", "end_date": "2024-01-16"
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.forecastCalls)
}

func TestHistoricalTool_LongRangeAccepted(t *testing.T) {
	service := &MockWeatherService{}
	tool := findTool(t, agent.Tools(service), "get_historical_weather")

	// The archive has no 16-day cap; a whole month is fine.
	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2023-01-01", "end_date": "2023-01-31"
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.historicalCalls)
}

func TestForecastTool_ServiceErrorIsRetryable(t *testing.T) {
	service := &MockWeatherService{
		weatherErr: &openmeteo.TransportError{Status: 500, Err: errors.New("HTTP error: 500 Internal Server Error")},
	}
	tool := findTool(t, agent.Tools(service), "get_weather_forecast")

	_, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2024-01-01", "end_date": "2024-01-02"
	}`)
	var retry *agent.RetryableError
	require.ErrorAs(t, err, &retry)

	var transport *openmeteo.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestHistoricalTool_Success(t *testing.T) {
	service := &MockWeatherService{
		weatherResult: models.WeatherResponse{Kind: models.QueryHistorical},
	}
	tool := findTool(t, agent.Tools(service), "get_historical_weather")

	result, err := tool.Execute(context.Background(), `{
		"latitude": 55.0, "longitude": 12.0, "timezone": "UTC",
		"start_date": "2023-01-01", "end_date": "2023-01-31"
	}`)
	require.NoError(t, err)
	assert.Equal(t, 1, service.historicalCalls)
	assert.Equal(t, 0, service.forecastCalls)
	assert.Contains(t, result, `"kind":"historical"`)
}

func TestTool_InvalidArgumentJSON(t *testing.T) {
	service := &MockWeatherService{}
	for _, name := range []string{"get_location_coordinates", "get_weather_forecast", "get_historical_weather"} {
		tool := findTool(t, agent.Tools(service), name)
		_, err := tool.Execute(context.Background(), "not json")
		var retry *agent.RetryableError
		require.ErrorAs(t, err, &retry, name)
	}
}
