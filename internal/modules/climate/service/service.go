package service

import (
	"context"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

// lookbackDays is the width of the "last year" window ending at the most
// recent measurement date.
const lookbackDays = 365

var routes = []types.Route{
	{Path: "/api/v1.0/precipitation", Description: "Precipitation by date for the last year of data"},
	{Path: "/api/v1.0/stations", Description: "Station identifiers"},
	{Path: "/api/v1.0/tobs", Description: "Temperature observations of the most active station for the last year of data"},
	{Path: "/api/v1.0/temp/{start}", Description: "Min, average and max temperature from start"},
	{Path: "/api/v1.0/temp/{start}/{end}", Description: "Min, average and max temperature from start to end inclusive"},
}

type Options struct {
	StrictDateValidation bool
	// PrecipDuplicates is one of types.DuplicatesFirst, DuplicatesLast or
	// DuplicatesError. Empty means DuplicatesLast.
	PrecipDuplicates string
}

type Service struct {
	repository repository.ClimateRepository
	strict     bool
	duplicates string
}

func NewService(repository repository.ClimateRepository, opts Options) *Service {
	duplicates := opts.PrecipDuplicates
	if duplicates == "" {
		duplicates = types.DuplicatesLast
	}
	return &Service{
		repository: repository,
		strict:     opts.StrictDateValidation,
		duplicates: duplicates,
	}
}

// RouteList returns the API routes in display order.
func (s *Service) RouteList() []types.Route {
	return append([]types.Route(nil), routes...)
}

// LatestDate returns the most recent measurement date.
func (s *Service) LatestDate(ctx context.Context) (string, error) {
	var latest string
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		latest, err = sess.LatestDate(ctx)
		return err
	})
	return latest, err
}

// PrecipitationLastYear maps each date within a year of the latest
// measurement to its precipitation. Rows are visited in storage order.
func (s *Service) PrecipitationLastYear(ctx context.Context) (map[string]*float64, error) {
	var out map[string]*float64
	err := s.withSession(ctx, func(sess repository.Session) error {
		cutoff, err := lastYearCutoff(ctx, sess)
		if err != nil {
			return err
		}
		rows, err := sess.Measurements(ctx, types.MeasurementFilter{From: cutoff})
		if err != nil {
			return err
		}
		out, err = s.precipitationByDate(rows)
		return err
	})
	return out, err
}

func (s *Service) precipitationByDate(rows []types.Measurement) (map[string]*float64, error) {
	out := make(map[string]*float64, len(rows))
	for _, m := range rows {
		if _, seen := out[m.Date]; seen {
			switch s.duplicates {
			case types.DuplicatesFirst:
				continue
			case types.DuplicatesError:
				return nil, fmt.Errorf("precipitation on %s: %w", m.Date, types.ErrDuplicateDate)
			}
		}
		out[m.Date] = m.Precipitation
	}
	return out, nil
}

// ListStations returns every station id in storage order.
func (s *Service) ListStations(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.withSession(ctx, func(sess repository.Session) error {
		stations, err := sess.Stations(ctx)
		if err != nil {
			return err
		}
		for _, st := range stations {
			ids = append(ids, st.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TemperatureObservationsLastYear returns the temperature observations of
// the station with the most measurements, limited to the last year of data.
func (s *Service) TemperatureObservationsLastYear(ctx context.Context) ([]float64, error) {
	obs := []float64{}
	err := s.withSession(ctx, func(sess repository.Session) error {
		active, err := sess.MostActiveStation(ctx)
		if err != nil {
			return err
		}
		cutoff, err := lastYearCutoff(ctx, sess)
		if err != nil {
			return err
		}
		rows, err := sess.Measurements(ctx, types.MeasurementFilter{StationID: active.StationID, From: cutoff})
		if err != nil {
			return err
		}
		for _, m := range rows {
			obs = append(obs, m.Temperature)
		}
		slog.Debug("temperature observations", "station", active.StationID, "from", cutoff, "count", len(obs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// TemperatureStats aggregates temperatures on or after start.
func (s *Service) TemperatureStats(ctx context.Context, start string) (types.TemperatureStats, error) {
	if err := s.validateDate(start); err != nil {
		return types.TemperatureStats{}, err
	}
	return s.temperatureStats(ctx, types.MeasurementFilter{From: start})
}

// TemperatureStatsRange aggregates temperatures between start and end
// inclusive. A start after end matches nothing.
func (s *Service) TemperatureStatsRange(ctx context.Context, start, end string) (types.TemperatureStats, error) {
	if err := s.validateDate(start); err != nil {
		return types.TemperatureStats{}, err
	}
	if err := s.validateDate(end); err != nil {
		return types.TemperatureStats{}, err
	}
	return s.temperatureStats(ctx, types.MeasurementFilter{From: start, To: end})
}

func (s *Service) temperatureStats(ctx context.Context, filter types.MeasurementFilter) (types.TemperatureStats, error) {
	var stats types.TemperatureStats
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		stats, err = sess.TemperatureStats(ctx, filter)
		return err
	})
	return stats, err
}

// Summary describes the dataset behind the repository.
func (s *Service) Summary(ctx context.Context) (types.DatasetSummary, error) {
	var sum types.DatasetSummary
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		sum, err = sess.Summary(ctx)
		return err
	})
	return sum, err
}

func (s *Service) validateDate(v string) error {
	if !s.strict {
		return nil
	}
	if _, err := types.ParseDate(v); err != nil {
		return fmt.Errorf("%q: %w", v, types.ErrInvalidDate)
	}
	return nil
}

// withSession runs fn inside one read session and always releases it.
func (s *Service) withSession(ctx context.Context, fn func(repository.Session) error) error {
	sess, err := s.repository.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Error("close read session", "error", err)
		}
	}()
	return fn(sess)
}

// lastYearCutoff returns the date lookbackDays before the latest
// measurement, in DateLayout.
func lastYearCutoff(ctx context.Context, sess repository.Session) (string, error) {
	latest, err := sess.LatestDate(ctx)
	if err != nil {
		return "", err
	}
	t, err := types.ParseDate(latest)
	if err != nil {
		return "", fmt.Errorf("latest date %q: %w: %w", latest, types.ErrStorageFault, err)
	}
	return t.AddDate(0, 0, -lookbackDays).Format(types.DateLayout), nil
}
