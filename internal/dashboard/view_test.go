package dashboard

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-dashboard/internal/data"
	"supplier-dashboard/internal/db"
)

func sampleSuppliers() []data.Supplier {
	return []data.Supplier{
		{SupplierID: 1, CompanyName: "Acme", City: "Oslo", Country: "Norway"},
		{SupplierID: 2, CompanyName: "Globex", City: "Rome", Country: "Italy"},
		{SupplierID: 3, CompanyName: "Acme", City: "Lima", Country: "Peru"},
		{SupplierID: 4, CompanyName: "Initech", City: "Oslo", Country: "Norway"},
		{SupplierID: 5, CompanyName: "Acme", City: "Oslo", Country: "Norway"},
	}
}

// seedStore creates a generated SQLite store and returns its config.
func seedStore(t *testing.T) db.Config {
	t.Helper()
	cfg := db.Config{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "supplier.db")}
	gdb, err := db.Open(cfg)
	require.NoError(t, err)
	defer db.Close(gdb)
	require.NoError(t, data.EnsureSchema(gdb))
	_, err = data.Generate(context.Background(), gdb, data.GenerateConfig{Suppliers: 30, Products: 50, Orders: 100, Seed: 11})
	require.NoError(t, err)
	return cfg
}

func TestCompaniesAndCitiesKeepTableOrder(t *testing.T) {
	rows := sampleSuppliers()
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, Companies(rows))
	assert.Equal(t, []string{"Oslo", "Rome", "Lima"}, Cities(rows))
	assert.Equal(t, Selection{Company: "Acme", Cities: []string{"Oslo", "Rome", "Lima"}}, DefaultSelection(rows))
}

func TestFilterWithAllCitiesMatchesCompanyOnly(t *testing.T) {
	rows := sampleSuppliers()
	for _, company := range Companies(rows) {
		got, err := FilterSuppliers(rows, Selection{Company: company, Cities: Cities(rows)})
		require.NoError(t, err)

		var want []data.Supplier
		for _, s := range rows {
			if s.CompanyName == company {
				want = append(want, s)
			}
		}
		assert.Equal(t, want, got, company)
	}
}

func TestFilterSuppliers(t *testing.T) {
	rows := sampleSuppliers()
	tests := []struct {
		name    string
		sel     Selection
		wantIDs []uint
		wantErr error
	}{
		{name: "nil cities means all", sel: Selection{Company: "Acme"}, wantIDs: []uint{1, 3, 5}},
		{name: "city subset", sel: Selection{Company: "Acme", Cities: []string{"Oslo"}}, wantIDs: []uint{1, 5}},
		{name: "unknown city ignored", sel: Selection{Company: "Globex", Cities: []string{"Rome", "Paris"}}, wantIDs: []uint{2}},
		{name: "no company", sel: Selection{Cities: []string{"Oslo"}}, wantErr: ErrNoCompany},
		{name: "unknown company", sel: Selection{Company: "Umbrella"}, wantErr: ErrUnknownCompany},
		{name: "empty city set", sel: Selection{Company: "Acme", Cities: []string{}}, wantErr: ErrEmptySelection},
		{name: "no overlap", sel: Selection{Company: "Globex", Cities: []string{"Oslo"}}, wantErr: ErrEmptySelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterSuppliers(rows, tt.sel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			ids := make([]uint, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.SupplierID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestClusteringIsDeterministicForSameRatings(t *testing.T) {
	var rows []data.Supplier
	for i := 1; i <= 40; i++ {
		rows = append(rows, data.Supplier{SupplierID: uint(i), CompanyName: "S", City: "C"})
	}

	a, err := BuildClusters(rows, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := BuildClusters(rows, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	require.Len(t, a.Rows, 40)
	require.Len(t, a.Sizes, ClusterCount)
	for i := range a.Rows {
		assert.Equal(t, a.Rows[i].Cluster, b.Rows[i].Cluster)
		assert.GreaterOrEqual(t, a.Rows[i].CustomerRating, 1.0)
		assert.Less(t, a.Rows[i].CustomerRating, 5.0)
	}
	assert.Equal(t, 40, a.Sizes[0]+a.Sizes[1]+a.Sizes[2])
}

func TestClusteringNeedsThreeSuppliers(t *testing.T) {
	_, err := BuildClusters(sampleSuppliers()[:2], rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestBuildForecastOnSimulatedSeries(t *testing.T) {
	cfg := seedStore(t)
	gdb, err := db.OpenReadOnly(cfg)
	require.NoError(t, err)
	defer db.Close(gdb)

	series, simulated, err := LoadSeries(context.Background(), gdb, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, simulated)
	require.Len(t, series, SimulatedDays)

	view, err := BuildForecast(series, simulated)
	require.NoError(t, err)
	assert.Equal(t, SimulationNotice, view.Notice)
	assert.Len(t, view.Predictions, SimulatedDays+ForecastPeriods)
	assert.Len(t, view.Projection(), ForecastPeriods)
	assert.Equal(t, "2023-01-31", view.Projection()[0].DS.Format("2006-01-02"))
	assert.Equal(t, "2023-06-30", view.Projection()[ForecastPeriods-1].DS.Format("2006-01-02"))
}

func TestLoadSeriesAggregatesOrderHistory(t *testing.T) {
	cfg := seedStore(t)
	gdb, err := db.Open(cfg)
	require.NoError(t, err)
	defer db.Close(gdb)

	require.NoError(t, gdb.Exec("ALTER TABLE Suppliers ADD COLUMN OrderDate TEXT").Error)
	require.NoError(t, gdb.Exec("ALTER TABLE Suppliers ADD COLUMN Amount REAL").Error)
	require.NoError(t, gdb.Exec("UPDATE Suppliers SET OrderDate = date('2023-01-01', '+' || (SupplierID % 10) || ' days'), Amount = 10").Error)
	require.NoError(t, gdb.Exec("UPDATE Suppliers SET OrderDate = 'garbage' WHERE SupplierID = 1").Error)

	series, simulated, err := LoadSeries(context.Background(), gdb, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, simulated)
	require.Len(t, series, 10)

	var total float64
	for _, p := range series {
		total += p.Y
	}
	assert.Equal(t, 290.0, total, "29 parseable rows of 10")

	view, err := BuildForecast(series, simulated)
	require.NoError(t, err)
	assert.Empty(t, view.Notice)
	assert.Len(t, view.Predictions, len(series)+ForecastPeriods)
}
