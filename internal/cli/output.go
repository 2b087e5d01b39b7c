package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"climate-server/internal/modules/climate/types"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type summaryView struct {
	Stations     int    `json:"stations"`
	Measurements int    `json:"measurements"`
	FirstDate    string `json:"first_date,omitempty"`
	LastDate     string `json:"last_date,omitempty"`
	MostActive   string `json:"most_active_station,omitempty"`
	MostActiveN  int    `json:"most_active_count,omitempty"`
}

func newSummaryView(sum types.DatasetSummary) summaryView {
	v := summaryView{
		Stations:     sum.Stations,
		Measurements: sum.Measurements,
		FirstDate:    sum.FirstDate,
		LastDate:     sum.LastDate,
	}
	if sum.MostActive != nil {
		v.MostActive = sum.MostActive.StationID
		v.MostActiveN = sum.MostActive.Count
	}
	return v
}

func printSummary(w io.Writer, format string, sum types.DatasetSummary) error {
	v := newSummaryView(sum)
	if format == "json" {
		return printJSON(w, v)
	}
	if _, err := fmt.Fprintf(w, "stations:           %d\nmeasurements:       %d\n", v.Stations, v.Measurements); err != nil {
		return err
	}
	if v.Measurements == 0 {
		_, err := fmt.Fprintln(w, "date span:          none")
		return err
	}
	_, err := fmt.Fprintf(w, "date span:          %s .. %s\nmost active:        %s (%d rows)\n",
		v.FirstDate, v.LastDate, v.MostActive, v.MostActiveN)
	return err
}
