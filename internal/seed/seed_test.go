package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"climate-server/internal/migrate"
	"climate-server/internal/modules/climate/types"
)

const stationsCSV = `station,name,latitude,longitude,elevation
USC00519397,"WAIKIKI 717.2, HI US",21.2716,-157.8168,3
USC00513117,"KANEOHE 838.1, HI US",21.4234,-157.8015,14.6
`

const measurementsCSV = `station,date,prcp,tobs
USC00519397,2010-01-01,0.08,65
USC00519397,2010-01-02,,63
USC00513117,2010-01-01,0.28,67
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrate.Run(context.Background(), db)
	require.NoError(t, err)
	return db
}

func TestReadStationsCSV(t *testing.T) {
	got, err := ReadStationsCSV(strings.NewReader(stationsCSV))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "USC00519397", got[0].ID)
	require.Equal(t, "WAIKIKI 717.2, HI US", got[0].Name)
	require.InDelta(t, 21.2716, *got[0].Latitude, 1e-9)
	require.InDelta(t, 14.6, *got[1].Elevation, 1e-9)
}

func TestReadStationsCSV_IDOnly(t *testing.T) {
	got, err := ReadStationsCSV(strings.NewReader("\ufeffStation\nUSC1\n"))
	require.NoError(t, err)
	require.Equal(t, []types.Station{{ID: "USC1"}}, got)
}

func TestReadMeasurementsCSV(t *testing.T) {
	got, err := ReadMeasurementsCSV(strings.NewReader(measurementsCSV))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Nil(t, got[1].Precipitation)
	require.InDelta(t, 0.08, *got[0].Precipitation, 1e-9)
	require.Equal(t, 67.0, got[2].Temperature)
}

func TestReadMeasurementsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty", body: "", wantErr: "empty file"},
		{name: "missing column", body: "station,date,prcp\nA,2010-01-01,0\n", wantErr: `missing "tobs" column`},
		{name: "bad number", body: "station,date,prcp,tobs\nA,2010-01-01,x,60\n", wantErr: `line 2: invalid prcp "x"`},
		{name: "missing tobs", body: "station,date,prcp,tobs\nA,2010-01-01,0,\n", wantErr: "line 2: missing tobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMeasurementsCSV(strings.NewReader(tt.body))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	stations := writeFile(t, "stations.yaml", `
- station: USC00519281
  name: WAIHEE 837.5, HI US
  latitude: 21.45167
  longitude: -157.84889
  elevation: 32.9
- station: USC00511918
`)
	measurements := writeFile(t, "measurements.yml", `
- station: USC00519281
  date: "2017-08-23"
  prcp: 0.05
  tobs: 79
- station: USC00519281
  date: "2017-08-22"
  tobs: 80
`)

	gotStations, err := LoadStations(stations)
	require.NoError(t, err)
	require.Len(t, gotStations, 2)
	require.Equal(t, "WAIHEE 837.5, HI US", gotStations[0].Name)
	require.Nil(t, gotStations[1].Elevation)

	gotMeasurements, err := LoadMeasurements(measurements)
	require.NoError(t, err)
	require.Len(t, gotMeasurements, 2)
	require.InDelta(t, 0.05, *gotMeasurements[0].Precipitation, 1e-9)
	require.Nil(t, gotMeasurements[1].Precipitation)
	require.Equal(t, 80.0, gotMeasurements[1].Temperature)
}

func TestLoad_Validation(t *testing.T) {
	_, err := LoadMeasurements(writeFile(t, "m.csv", "station,date,prcp,tobs\nA,08/23/2017,0,60\n"))
	require.ErrorIs(t, err, types.ErrInvalidDate)

	_, err = LoadStations(writeFile(t, "s.yaml", "- name: nameless\n"))
	require.ErrorContains(t, err, "missing station id")

	_, err = LoadStations(writeFile(t, "s.json", "[]"))
	require.ErrorContains(t, err, "unsupported fixture format")

	_, err = LoadStations(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInsert(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	stations, err := LoadStations(writeFile(t, "stations.csv", stationsCSV))
	require.NoError(t, err)
	measurements, err := LoadMeasurements(writeFile(t, "measurements.csv", measurementsCSV))
	require.NoError(t, err)

	res, err := Insert(ctx, db, stations, measurements)
	require.NoError(t, err)
	require.Equal(t, Result{Stations: 2, Measurements: 3}, res)

	var nulls int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM measurement WHERE prcp IS NULL`).Scan(&nulls))
	require.Equal(t, 1, nulls)
}

func TestInsert_RollsBackOnFailure(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	// The unique index on station.station rejects the second row.
	stations := []types.Station{{ID: "USC1"}, {ID: "USC1"}}
	measurements := []types.Measurement{{StationID: "USC1", Date: "2017-01-01", Temperature: 70}}

	_, err := Insert(ctx, db, stations, measurements)
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM station`).Scan(&n))
	require.Zero(t, n)
}
