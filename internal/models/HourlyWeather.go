package models

import "time"

// HourlyWeather is one hour of weather data. Same pointer convention as
// DailyWeather: absent API values stay nil.
type HourlyWeather struct {
	Time          time.Time `json:"time" example:"2024-01-01T13:00"`
	Temperature   *float64  `json:"temperature_2m,omitempty" example:"4.2"`
	WindSpeed     *float64  `json:"wind_speed_10m,omitempty" example:"11.5"`
	Precipitation *float64  `json:"precipitation,omitempty" example:"0.3"`
	WeatherCode   *int      `json:"weather_code,omitempty" example:"3"`
	IsDay         *int      `json:"is_day,omitempty" example:"1"`
}
