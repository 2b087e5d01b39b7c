package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-measurements.sql
var getMeasurementsSQL string

//go:embed sql/get-latest-date.sql
var getLatestDateSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

//go:embed sql/get-summary.sql
var getSummarySQL string

// ClimateRepository hands out read sessions over the measurement and
// station data. Every session must be closed by the caller.
type ClimateRepository interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a scoped read handle. Aggregate methods return
// types.ErrDataUnavailable when there are no rows to aggregate.
type Session interface {
	Stations(ctx context.Context) ([]types.Station, error)
	Measurements(ctx context.Context, filter types.MeasurementFilter) ([]types.Measurement, error)
	LatestDate(ctx context.Context) (string, error)
	MostActiveStation(ctx context.Context) (types.StationActivity, error)
	TemperatureStats(ctx context.Context, filter types.MeasurementFilter) (types.TemperatureStats, error)
	Summary(ctx context.Context) (types.DatasetSummary, error)
	Close() error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Open(ctx context.Context) (Session, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, storageFault("acquire connection", err)
	}
	return &sqlSession{conn: conn}, nil
}

type sqlSession struct {
	conn *sql.Conn
}

func (s *sqlSession) Close() error {
	return s.conn.Close()
}

func (s *sqlSession) Stations(ctx context.Context) ([]types.Station, error) {
	rows, err := s.conn.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, storageFault("query stations", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.Station{}
	for rows.Next() {
		var st types.Station
		var lat, lng, elev sql.NullFloat64
		if err := rows.Scan(&st.ID, &st.Name, &lat, &lng, &elev); err != nil {
			return nil, storageFault("scan station", err)
		}
		st.Latitude = nullFloat(lat)
		st.Longitude = nullFloat(lng)
		st.Elevation = nullFloat(elev)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("iterate stations", err)
	}
	return out, nil
}

func (s *sqlSession) Measurements(ctx context.Context, filter types.MeasurementFilter) ([]types.Measurement, error) {
	rows, err := s.conn.QueryContext(ctx, getMeasurementsSQL, filter.StationID, filter.From, filter.To)
	if err != nil {
		return nil, storageFault("query measurements", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close measurements rows", "error", err)
		}
	}()
	out := []types.Measurement{}
	for rows.Next() {
		var m types.Measurement
		var prcp sql.NullFloat64
		if err := rows.Scan(&m.StationID, &m.Date, &prcp, &m.Temperature); err != nil {
			return nil, storageFault("scan measurement", err)
		}
		m.Precipitation = nullFloat(prcp)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("iterate measurements", err)
	}
	return out, nil
}

func (s *sqlSession) LatestDate(ctx context.Context) (string, error) {
	var latest sql.NullString
	if err := s.conn.QueryRowContext(ctx, getLatestDateSQL).Scan(&latest); err != nil {
		return "", storageFault("query latest date", err)
	}
	if !latest.Valid {
		return "", fmt.Errorf("latest date: %w", types.ErrDataUnavailable)
	}
	return latest.String, nil
}

func (s *sqlSession) MostActiveStation(ctx context.Context) (types.StationActivity, error) {
	var a types.StationActivity
	err := s.conn.QueryRowContext(ctx, getMostActiveStationSQL).Scan(&a.StationID, &a.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, fmt.Errorf("most active station: %w", types.ErrDataUnavailable)
	}
	if err != nil {
		return types.StationActivity{}, storageFault("query most active station", err)
	}
	return a, nil
}

func (s *sqlSession) TemperatureStats(ctx context.Context, filter types.MeasurementFilter) (types.TemperatureStats, error) {
	var lo, avg, hi sql.NullFloat64
	err := s.conn.QueryRowContext(ctx, getTemperatureStatsSQL, filter.StationID, filter.From, filter.To).Scan(&lo, &avg, &hi)
	if err != nil {
		return types.TemperatureStats{}, storageFault("query temperature stats", err)
	}
	return types.TemperatureStats{Min: nullFloat(lo), Avg: nullFloat(avg), Max: nullFloat(hi)}, nil
}

func (s *sqlSession) Summary(ctx context.Context) (types.DatasetSummary, error) {
	var sum types.DatasetSummary
	var first, last sql.NullString
	err := s.conn.QueryRowContext(ctx, getSummarySQL).Scan(&sum.Stations, &sum.Measurements, &first, &last)
	if err != nil {
		return types.DatasetSummary{}, storageFault("query summary", err)
	}
	sum.FirstDate = first.String
	sum.LastDate = last.String
	if sum.Measurements == 0 {
		return sum, nil
	}
	active, err := s.MostActiveStation(ctx)
	if err != nil {
		return types.DatasetSummary{}, err
	}
	sum.MostActive = &active
	return sum, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func storageFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrStorageFault, err)
}
