package models

import "time"

// DailyWeather is one calendar date of weather data. Optional fields are
// pointers: a null in the API column stays absent instead of reading as zero.
type DailyWeather struct {
	Date             time.Time `json:"date" example:"2024-01-01"`
	TemperatureMax   *float64  `json:"temperature_2m_max,omitempty" example:"5.0"`
	TemperatureMin   *float64  `json:"temperature_2m_min,omitempty" example:"1.0"`
	Sunrise          *string   `json:"sunrise,omitempty" example:"2024-01-01T08:41"`
	Sunset           *string   `json:"sunset,omitempty" example:"2024-01-01T15:48"`
	SunshineDuration *float64  `json:"sunshine_duration,omitempty" example:"10800.0"`
	DaylightDuration *float64  `json:"daylight_duration,omitempty" example:"25620.0"`
	WindSpeedMax     *float64  `json:"wind_speed_10m_max,omitempty" example:"21.6"`
	PrecipitationSum *float64  `json:"precipitation_sum,omitempty" example:"2.4"`
	WeatherCode      *int      `json:"weather_code,omitempty" example:"61"`
}
