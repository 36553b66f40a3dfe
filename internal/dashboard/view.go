package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"supplier-dashboard/internal/cluster"
	"supplier-dashboard/internal/data"
	"supplier-dashboard/internal/forecast"
)

const (
	ForecastPeriods = 6
	SimulatedDays   = 365
	ClusterCount    = 3
	ClusterSeed     = 42
	minRating       = 1.0
	maxRating       = 5.0

	SimulationNotice = "Time series data not found in supplier data. Simulating data for forecasting."
)

var (
	ErrNoCompany      = errors.New("no supplier selected")
	ErrUnknownCompany = errors.New("selected supplier does not exist")
	ErrEmptySelection = errors.New("no suppliers match the selected filters")
)

// Selection is the user's filter input. A nil Cities slice means every city.
type Selection struct {
	Company string
	Cities  []string
}

// Companies returns the distinct company names in table order.
func Companies(rows []data.Supplier) []string {
	return distinct(rows, func(s data.Supplier) string { return s.CompanyName })
}

// Cities returns the distinct cities in table order.
func Cities(rows []data.Supplier) []string {
	return distinct(rows, func(s data.Supplier) string { return s.City })
}

// DefaultSelection picks the first company and every city.
func DefaultSelection(rows []data.Supplier) Selection {
	sel := Selection{Cities: Cities(rows)}
	if names := Companies(rows); len(names) > 0 {
		sel.Company = names[0]
	}
	return sel
}

// FilterSuppliers keeps rows with the selected company located in one of the
// selected cities.
func FilterSuppliers(rows []data.Supplier, sel Selection) ([]data.Supplier, error) {
	if sel.Company == "" {
		return nil, ErrNoCompany
	}
	known := false
	for _, s := range rows {
		if s.CompanyName == sel.Company {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompany, sel.Company)
	}

	var cities map[string]struct{}
	if sel.Cities != nil {
		cities = make(map[string]struct{}, len(sel.Cities))
		for _, c := range sel.Cities {
			cities[c] = struct{}{}
		}
	}

	var out []data.Supplier
	for _, s := range rows {
		if s.CompanyName != sel.Company {
			continue
		}
		if cities != nil {
			if _, ok := cities[s.City]; !ok {
				continue
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrEmptySelection
	}
	return out, nil
}

// ForecastView is the fitted series and its projection.
type ForecastView struct {
	Simulated   bool
	Notice      string
	History     []forecast.Point
	Predictions []forecast.Prediction
	Periods     int
}

// Projection returns only the predictions past the history.
func (v *ForecastView) Projection() []forecast.Prediction {
	return v.Predictions[len(v.History):]
}

// LoadSeries returns the order history stored on Suppliers when the table has
// OrderDate and Amount columns, and a simulated year of daily demand otherwise.
func LoadSeries(ctx context.Context, gdb *gorm.DB, rnd *rand.Rand) ([]forecast.Point, bool, error) {
	cols, err := data.SupplierColumns(gdb)
	if err != nil {
		return nil, false, fmt.Errorf("inspect supplier columns: %w", err)
	}
	if !data.HasOrderHistory(cols) {
		return forecast.Simulate(forecast.SimulationStart, SimulatedDays, rnd), true, nil
	}

	rows, err := data.LoadSupplierOrders(ctx, gdb)
	if err != nil {
		return nil, false, fmt.Errorf("load supplier orders: %w", err)
	}
	obs := make([]forecast.Observation, 0, len(rows))
	for _, r := range rows {
		if r.OrderDate == nil || r.Amount == nil {
			continue
		}
		obs = append(obs, forecast.Observation{Date: *r.OrderDate, Amount: *r.Amount})
	}
	return forecast.Aggregate(obs), false, nil
}

// BuildForecast fits the model on series and projects ForecastPeriods month ends.
func BuildForecast(series []forecast.Point, simulated bool) (*ForecastView, error) {
	model := forecast.New(forecast.DefaultConfig())
	if err := model.Fit(series); err != nil {
		return nil, fmt.Errorf("fit forecast model: %w", err)
	}
	future, err := model.MakeFuture(ForecastPeriods, forecast.MonthEnd)
	if err != nil {
		return nil, err
	}
	preds, err := model.Predict(future)
	if err != nil {
		return nil, err
	}
	view := &ForecastView{
		Simulated:   simulated,
		History:     model.History(),
		Predictions: preds,
		Periods:     ForecastPeriods,
	}
	if simulated {
		view.Notice = SimulationNotice
	}
	return view, nil
}

// ClusteredSupplier is a supplier with its simulated rating and cluster label.
type ClusteredSupplier struct {
	data.Supplier
	CustomerRating float64
	Cluster        int
}

// ClusterView is the outcome of one clustering pass.
type ClusterView struct {
	Rows    []ClusteredSupplier
	Sizes   []int
	Inertia float64
}

// BuildClusters draws a rating in [1, 5) for every supplier, standardizes the
// (SupplierID, rating) pairs and splits them into ClusterCount groups.
func BuildClusters(rows []data.Supplier, rnd *rand.Rand) (*ClusterView, error) {
	ratings := make([]float64, len(rows))
	for i := range rows {
		ratings[i] = minRating + rnd.Float64()*(maxRating-minRating)
	}
	return clusterWithRatings(rows, ratings)
}

func clusterWithRatings(rows []data.Supplier, ratings []float64) (*ClusterView, error) {
	features := make([][]float64, len(rows))
	for i, s := range rows {
		features[i] = []float64{float64(s.SupplierID), ratings[i]}
	}
	scaled, err := cluster.Standardize(features)
	if err != nil {
		return nil, fmt.Errorf("standardize features: %w", err)
	}
	res, err := cluster.NewKMeans(ClusterCount, ClusterSeed).Fit(scaled)
	if err != nil {
		return nil, fmt.Errorf("cluster suppliers: %w", err)
	}

	out := make([]ClusteredSupplier, len(rows))
	for i, s := range rows {
		out[i] = ClusteredSupplier{Supplier: s, CustomerRating: ratings[i], Cluster: res.Labels[i]}
	}
	return &ClusterView{Rows: out, Sizes: res.Sizes(), Inertia: res.Inertia}, nil
}

func distinct(rows []data.Supplier, key func(data.Supplier) string) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, s := range rows {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
