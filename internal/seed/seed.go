// Package seed loads station and measurement fixtures into the climate
// schema. Fixtures are CSV files in the hawaii_stations.csv and
// hawaii_measurements.csv column layout, or YAML lists of the same records.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"climate-server/internal/modules/climate/types"
)

// Result counts the rows written by Insert.
type Result struct {
	Stations     int
	Measurements int
}

// LoadStations reads station fixtures from a .csv, .yaml or .yml file.
func LoadStations(path string) ([]types.Station, error) {
	var out []types.Station
	err := readFile(path, func(r io.Reader, format string) error {
		var err error
		if format == "csv" {
			out, err = ReadStationsCSV(r)
		} else {
			out, err = readYAML[types.Station](r)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	for i, st := range out {
		if strings.TrimSpace(st.ID) == "" {
			return nil, fmt.Errorf("%s: station %d: missing station id", path, i+1)
		}
	}
	return out, nil
}

// LoadMeasurements reads measurement fixtures from a .csv, .yaml or .yml file.
func LoadMeasurements(path string) ([]types.Measurement, error) {
	var out []types.Measurement
	err := readFile(path, func(r io.Reader, format string) error {
		var err error
		if format == "csv" {
			out, err = ReadMeasurementsCSV(r)
		} else {
			out, err = readYAML[types.Measurement](r)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	for i, m := range out {
		if err := validateMeasurement(m); err != nil {
			return nil, fmt.Errorf("%s: measurement %d: %w", path, i+1, err)
		}
	}
	return out, nil
}

func readFile(path string, fn func(io.Reader, string) error) error {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		format = "csv"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return fmt.Errorf("%s: unsupported fixture format (want .csv, .yaml or .yml)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close fixture file", "path", path, "error", err)
		}
	}()
	if err := fn(f, format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func readYAML[T any](r io.Reader) ([]T, error) {
	var out []T
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return []T{}, nil
		}
		return nil, err
	}
	return out, nil
}

// ReadStationsCSV parses rows with a header naming at least the station
// column. name, latitude, longitude and elevation are optional.
func ReadStationsCSV(r io.Reader) ([]types.Station, error) {
	var out []types.Station
	err := readCSV(r, []string{"station"}, func(row csvRow) error {
		st := types.Station{ID: row.get("station"), Name: row.get("name")}
		var err error
		if st.Latitude, err = row.float("latitude"); err != nil {
			return err
		}
		if st.Longitude, err = row.float("longitude"); err != nil {
			return err
		}
		if st.Elevation, err = row.float("elevation"); err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

// ReadMeasurementsCSV parses rows with station, date, prcp and tobs
// columns. An empty prcp cell is stored as NULL.
func ReadMeasurementsCSV(r io.Reader) ([]types.Measurement, error) {
	var out []types.Measurement
	err := readCSV(r, []string{"station", "date", "prcp", "tobs"}, func(row csvRow) error {
		m := types.Measurement{StationID: row.get("station"), Date: row.get("date")}
		var err error
		if m.Precipitation, err = row.float("prcp"); err != nil {
			return err
		}
		tobs, err := row.float("tobs")
		if err != nil {
			return err
		}
		if tobs == nil {
			return errors.New("missing tobs")
		}
		m.Temperature = *tobs
		out = append(out, m)
		return nil
	})
	return out, err
}

type csvRow struct {
	cols   map[string]int
	record []string
}

func (r csvRow) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) float(name string) (*float64, error) {
	s := r.get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return &v, nil
}

func readCSV(r io.Reader, required []string, fn func(csvRow) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("empty file")
	}
	if err != nil {
		return err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("missing %q column", name)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(csvRow{cols: cols, record: record}); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func validateMeasurement(m types.Measurement) error {
	if strings.TrimSpace(m.StationID) == "" {
		return errors.New("missing station id")
	}
	if _, err := types.ParseDate(m.Date); err != nil {
		return fmt.Errorf("date %q: %w", m.Date, types.ErrInvalidDate)
	}
	return nil
}

// Insert writes stations and measurements in one transaction. Nothing is
// written when any row fails.
func Insert(ctx context.Context, db *sql.DB, stations []types.Station, measurements []types.Measurement) (Result, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var res Result
	if len(stations) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return Result{}, err
		}
		defer func() { _ = stmt.Close() }()
		for _, st := range stations {
			if _, err := stmt.ExecContext(ctx, st.ID, nullString(st.Name), nullFloat(st.Latitude), nullFloat(st.Longitude), nullFloat(st.Elevation)); err != nil {
				return Result{}, fmt.Errorf("insert station %s: %w", st.ID, err)
			}
			res.Stations++
		}
	}

	if len(measurements) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return Result{}, err
		}
		defer func() { _ = stmt.Close() }()
		for _, m := range measurements {
			if _, err := stmt.ExecContext(ctx, m.StationID, m.Date, nullFloat(m.Precipitation), m.Temperature); err != nil {
				return Result{}, fmt.Errorf("insert measurement %s %s: %w", m.StationID, m.Date, err)
			}
			res.Measurements++
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	slog.Info("fixtures seeded", "stations", res.Stations, "measurements", res.Measurements)
	return res, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
