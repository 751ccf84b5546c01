package openmeteo

import (
	"fmt"
	"time"

	"github.com/TheJproject/weather-chatbot/internal/models"
)

const (
	dailyTimeLayout  = "2006-01-02"
	hourlyTimeLayout = "2006-01-02T15:04"
)

// DailyColumns is the column-oriented daily block of an Open-Meteo response:
// one array per field, all aligned to the time array by position. Columns the
// API may return null entries in are pointer slices. Fields this client does
// not request are simply not decoded, so upstream additions are harmless.
type DailyColumns struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	Sunrise          []*string  `json:"sunrise"`
	Sunset           []*string  `json:"sunset"`
	SunshineDuration []*float64 `json:"sunshine_duration"`
	DaylightDuration []*float64 `json:"daylight_duration"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weather_code"`
}

// HourlyColumns is the column-oriented hourly block of an Open-Meteo response.
type HourlyColumns struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	WindSpeed     []*float64 `json:"wind_speed_10m"`
	Precipitation []*float64 `json:"precipitation"`
	WeatherCode   []*int     `json:"weather_code"`
	IsDay         []*int     `json:"is_day"`
}

// ParseDaily projects the daily columns into one DailyWeather row per time
// step. Every present column must have exactly as many values as the time
// column; a mismatch fails with MalformedResponseError and produces no
// partial output. Row order is the time-column order. A null column entry
// stays nil in the row.
func ParseDaily(cols DailyColumns) ([]models.DailyWeather, error) {
	n := len(cols.Time)
	if n == 0 {
		return nil, nil
	}

	if err := checkColumns(n,
		column{"temperature_2m_max", len(cols.TemperatureMax), cols.TemperatureMax == nil},
		column{"temperature_2m_min", len(cols.TemperatureMin), cols.TemperatureMin == nil},
		column{"sunrise", len(cols.Sunrise), cols.Sunrise == nil},
		column{"sunset", len(cols.Sunset), cols.Sunset == nil},
		column{"sunshine_duration", len(cols.SunshineDuration), cols.SunshineDuration == nil},
		column{"daylight_duration", len(cols.DaylightDuration), cols.DaylightDuration == nil},
		column{"wind_speed_10m_max", len(cols.WindSpeedMax), cols.WindSpeedMax == nil},
		column{"precipitation_sum", len(cols.PrecipitationSum), cols.PrecipitationSum == nil},
		column{"weather_code", len(cols.WeatherCode), cols.WeatherCode == nil},
	); err != nil {
		return nil, err
	}

	rows := make([]models.DailyWeather, 0, n)
	for i, d := range cols.Time {
		date, err := time.Parse(dailyTimeLayout, d)
		if err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("cannot parse date %q at index %d: %v", d, i, err)}
		}

		rows = append(rows, models.DailyWeather{
			Date:             date,
			TemperatureMax:   at(cols.TemperatureMax, i),
			TemperatureMin:   at(cols.TemperatureMin, i),
			Sunrise:          at(cols.Sunrise, i),
			Sunset:           at(cols.Sunset, i),
			SunshineDuration: at(cols.SunshineDuration, i),
			DaylightDuration: at(cols.DaylightDuration, i),
			WindSpeedMax:     at(cols.WindSpeedMax, i),
			PrecipitationSum: at(cols.PrecipitationSum, i),
			WeatherCode:      at(cols.WeatherCode, i),
		})
	}

	return rows, nil
}

// ParseHourly projects the hourly columns into one HourlyWeather row per
// time step, under the same alignment contract as ParseDaily.
func ParseHourly(cols HourlyColumns) ([]models.HourlyWeather, error) {
	n := len(cols.Time)
	if n == 0 {
		return nil, nil
	}

	if err := checkColumns(n,
		column{"temperature_2m", len(cols.Temperature), cols.Temperature == nil},
		column{"wind_speed_10m", len(cols.WindSpeed), cols.WindSpeed == nil},
		column{"precipitation", len(cols.Precipitation), cols.Precipitation == nil},
		column{"weather_code", len(cols.WeatherCode), cols.WeatherCode == nil},
		column{"is_day", len(cols.IsDay), cols.IsDay == nil},
	); err != nil {
		return nil, err
	}

	rows := make([]models.HourlyWeather, 0, n)
	for i, ts := range cols.Time {
		t, err := time.Parse(hourlyTimeLayout, ts)
		if err != nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("cannot parse time %q at index %d: %v", ts, i, err)}
		}

		rows = append(rows, models.HourlyWeather{
			Time:          t,
			Temperature:   at(cols.Temperature, i),
			WindSpeed:     at(cols.WindSpeed, i),
			Precipitation: at(cols.Precipitation, i),
			WeatherCode:   at(cols.WeatherCode, i),
			IsDay:         at(cols.IsDay, i),
		})
	}

	return rows, nil
}

type column struct {
	name   string
	length int
	absent bool
}

// checkColumns enforces the alignment invariant: every column the API sent
// must match the time column's length exactly. Absent columns are fine;
// truncating or padding a mismatched one is not.
func checkColumns(n int, cols ...column) error {
	for _, c := range cols {
		if c.absent {
			continue
		}
		if c.length != n {
			return &MalformedResponseError{
				Reason: fmt.Sprintf("column %q has %d values, time has %d", c.name, c.length, n),
			}
		}
	}
	return nil
}

// at returns the i-th pointer of a column, or nil for absent columns.
func at[T any](col []*T, i int) *T {
	if col == nil {
		return nil
	}
	return col[i]
}
