package repository

import (
	"context"
	"fmt"

	"climate-server/internal/modules/climate/types"
)

// memoryRepository serves a fixed in-memory table set. Rows are returned in
// insertion order, which stands in for storage order.
type memoryRepository struct {
	stations     []types.Station
	measurements []types.Measurement
}

// NewMemoryRepository returns a repository over copies of the given rows.
func NewMemoryRepository(stations []types.Station, measurements []types.Measurement) ClimateRepository {
	return &memoryRepository{
		stations:     append([]types.Station(nil), stations...),
		measurements: append([]types.Measurement(nil), measurements...),
	}
}

func (r *memoryRepository) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageFault("acquire memory session", err)
	}
	return &memorySession{repo: r}, nil
}

type memorySession struct {
	repo *memoryRepository
}

func (s *memorySession) Close() error { return nil }

func (s *memorySession) Stations(ctx context.Context) ([]types.Station, error) {
	return append([]types.Station{}, s.repo.stations...), nil
}

func (s *memorySession) Measurements(ctx context.Context, filter types.MeasurementFilter) ([]types.Measurement, error) {
	out := []types.Measurement{}
	for _, m := range s.repo.measurements {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memorySession) LatestDate(ctx context.Context) (string, error) {
	latest := ""
	for _, m := range s.repo.measurements {
		if m.Date > latest {
			latest = m.Date
		}
	}
	if len(s.repo.measurements) == 0 {
		return "", fmt.Errorf("latest date: %w", types.ErrDataUnavailable)
	}
	return latest, nil
}

func (s *memorySession) MostActiveStation(ctx context.Context) (types.StationActivity, error) {
	counts := make(map[string]int)
	for _, m := range s.repo.measurements {
		counts[m.StationID]++
	}
	var best types.StationActivity
	for id, n := range counts {
		if n > best.Count || (n == best.Count && id < best.StationID) {
			best = types.StationActivity{StationID: id, Count: n}
		}
	}
	if best.Count == 0 {
		return types.StationActivity{}, fmt.Errorf("most active station: %w", types.ErrDataUnavailable)
	}
	return best, nil
}

func (s *memorySession) TemperatureStats(ctx context.Context, filter types.MeasurementFilter) (types.TemperatureStats, error) {
	var lo, hi, sum float64
	n := 0
	for _, m := range s.repo.measurements {
		if !filter.Matches(m) {
			continue
		}
		if n == 0 || m.Temperature < lo {
			lo = m.Temperature
		}
		if n == 0 || m.Temperature > hi {
			hi = m.Temperature
		}
		sum += m.Temperature
		n++
	}
	if n == 0 {
		return types.TemperatureStats{}, nil
	}
	avg := sum / float64(n)
	return types.TemperatureStats{Min: &lo, Avg: &avg, Max: &hi}, nil
}

func (s *memorySession) Summary(ctx context.Context) (types.DatasetSummary, error) {
	sum := types.DatasetSummary{
		Stations:     len(s.repo.stations),
		Measurements: len(s.repo.measurements),
	}
	for _, m := range s.repo.measurements {
		if sum.FirstDate == "" || m.Date < sum.FirstDate {
			sum.FirstDate = m.Date
		}
		if m.Date > sum.LastDate {
			sum.LastDate = m.Date
		}
	}
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
