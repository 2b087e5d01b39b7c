package types

import (
	"encoding/json"
	"errors"
	"time"
)

// DateLayout is the on-disk format of measurement dates. Values in this
// layout sort lexically in calendar order.
const DateLayout = "2006-01-02"

// Duplicate date policies for the precipitation mapping.
const (
	DuplicatesFirst = "first"
	DuplicatesLast  = "last"
	DuplicatesError = "error"
)

// ValidDuplicatePolicy reports whether p names a duplicate date policy.
func ValidDuplicatePolicy(p string) bool {
	switch p {
	case DuplicatesFirst, DuplicatesLast, DuplicatesError:
		return true
	}
	return false
}

var (
	// ErrDataUnavailable means a required aggregate had no rows to work on.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrStorageFault means the dataset could not be read or is malformed.
	ErrStorageFault = errors.New("storage fault")
	// ErrInvalidDate is returned for non YYYY-MM-DD input when strict date
	// validation is enabled.
	ErrInvalidDate = errors.New("invalid date")
	// ErrDuplicateDate is returned by the "error" duplicate policy.
	ErrDuplicateDate = errors.New("duplicate date")
)

type Station struct {
	ID        string   `json:"station" yaml:"station"`
	Name      string   `json:"name,omitempty" yaml:"name"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude"`
	Elevation *float64 `json:"elevation,omitempty" yaml:"elevation"`
}

type Measurement struct {
	StationID     string   `json:"station" yaml:"station"`
	Date          string   `json:"date" yaml:"date"`
	Precipitation *float64 `json:"prcp" yaml:"prcp"`
	Temperature   float64  `json:"tobs" yaml:"tobs"`
}

// MeasurementFilter selects measurements. Empty fields do not constrain.
// From and To are inclusive and compared lexically against stored dates.
type MeasurementFilter struct {
	StationID string
	From      string
	To        string
}

// Matches reports whether m passes the filter.
func (f MeasurementFilter) Matches(m Measurement) bool {
	if f.StationID != "" && m.StationID != f.StationID {
		return false
	}
	if f.From != "" && m.Date < f.From {
		return false
	}
	if f.To != "" && m.Date > f.To {
		return false
	}
	return true
}

type StationActivity struct {
	StationID string `json:"station"`
	Count     int    `json:"count"`
}

// TemperatureStats holds min/avg/max of temperature observations. Fields are
// nil when no rows matched.
type TemperatureStats struct {
	Min *float64
	Avg *float64
	Max *float64
}

// MarshalJSON encodes the stats as the triple [min, avg, max].
func (s TemperatureStats) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]*float64{s.Min, s.Avg, s.Max})
}

// UnmarshalJSON decodes the [min, avg, max] triple.
func (s *TemperatureStats) UnmarshalJSON(b []byte) error {
	var triple [3]*float64
	if err := json.Unmarshal(b, &triple); err != nil {
		return err
	}
	s.Min, s.Avg, s.Max = triple[0], triple[1], triple[2]
	return nil
}

type Route struct {
	Path        string
	Description string
}

// DatasetSummary describes the loaded dataset.
type DatasetSummary struct {
	Stations     int
	Measurements int
	FirstDate    string
	LastDate     string
	MostActive   *StationActivity
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
