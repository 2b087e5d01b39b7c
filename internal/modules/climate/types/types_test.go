package types

import (
	"encoding/json"
	"testing"
)

func TestTemperatureStats_JSON(t *testing.T) {
	lo, avg, hi := 79.0, 79.5, 80.0
	tests := []struct {
		name  string
		stats TemperatureStats
		want  string
	}{
		{name: "values", stats: TemperatureStats{Min: &lo, Avg: &avg, Max: &hi}, want: `[79,79.5,80]`},
		{name: "no matches", stats: TemperatureStats{}, want: `[null,null,null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.stats)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("Marshal = %s; want %s", b, tt.want)
			}

			var back TemperatureStats
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if (back.Avg == nil) != (tt.stats.Avg == nil) {
				t.Errorf("Unmarshal Avg = %v; want %v", back.Avg, tt.stats.Avg)
			}
		})
	}
}

func TestMeasurementFilter_Matches(t *testing.T) {
	m := Measurement{StationID: "USC00519281", Date: "2017-08-23"}
	tests := []struct {
		name   string
		filter MeasurementFilter
		want   bool
	}{
		{name: "empty", filter: MeasurementFilter{}, want: true},
		{name: "inclusive bounds", filter: MeasurementFilter{From: "2017-08-23", To: "2017-08-23"}, want: true},
		{name: "after to", filter: MeasurementFilter{To: "2017-08-22"}, want: false},
		{name: "other station", filter: MeasurementFilter{StationID: "USC00519397"}, want: false},
		{name: "lexical prefix", filter: MeasurementFilter{From: "2017"}, want: true},
		{name: "inverted", filter: MeasurementFilter{From: "2017-08-24", To: "2017-08-01"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(m); got != tt.want {
				t.Errorf("Matches() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestValidDuplicatePolicy(t *testing.T) {
	tests := map[string]bool{
		DuplicatesFirst: true,
		DuplicatesLast:  true,
		DuplicatesError: true,
		"":              false,
		"Last":          false,
		"merge":         false,
	}
	for policy, want := range tests {
		if got := ValidDuplicatePolicy(policy); got != want {
			t.Errorf("ValidDuplicatePolicy(%q) = %v, want %v", policy, got, want)
		}
	}
}
