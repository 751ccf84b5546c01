package models

import "time"

// QueryKind tags a WeatherResponse with the endpoint that produced it.
type QueryKind string

const (
	QueryForecast   QueryKind = "forecast"
	QueryHistorical QueryKind = "historical"
)

// WeatherResponse is the envelope for one forecast or archive call: the
// resolved location plus the parsed daily and hourly rows. Rows keep the
// chronological order of the API's time column; nothing is re-sorted.
type WeatherResponse struct {
	Location  GeoLocation     `json:"location"`
	Kind      QueryKind       `json:"kind" example:"forecast"`
	StartDate time.Time       `json:"start_date" example:"2024-01-01"`
	EndDate   time.Time       `json:"end_date" example:"2024-01-07"`
	Daily     []DailyWeather  `json:"daily,omitempty"`
	Hourly    []HourlyWeather `json:"hourly,omitempty"`
}
