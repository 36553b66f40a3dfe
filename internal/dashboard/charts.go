package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"supplier-dashboard/internal/data"
)

const chartHeight = "420px"

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "100%",
		Height:    chartHeight,
	})
}

// BarChart plots the filtered suppliers, one bar per row keyed by city.
func BarChart(company string, rows []data.Supplier) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(company),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s Performance", company)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "City"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "SupplierID"}),
	)

	cities := make([]string, 0, len(rows))
	items := make([]opts.BarData, 0, len(rows))
	for _, s := range rows {
		cities = append(cities, s.City)
		items = append(items, opts.BarData{Name: s.CompanyName, Value: s.SupplierID})
	}
	bar.SetXAxis(cities).AddSeries("SupplierID", items)
	return bar
}

// ForecastChart plots observed values, the fitted curve with its interval, and
// the projection.
func ForecastChart(view *ForecastView) *charts.Line {
	line := charts.NewLine()
	subtitle := "observed order amounts"
	if view.Simulated {
		subtitle = "simulated daily demand"
	}
	line.SetGlobalOptions(
		initOpts("Forecast"),
		charts.WithTitleOpts(opts.Title{Title: "Future Trend Prediction", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ds"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y"}),
	)

	dates := make([]string, 0, len(view.Predictions))
	actual := make([]opts.LineData, 0, len(view.Predictions))
	yhat := make([]opts.LineData, 0, len(view.Predictions))
	lower := make([]opts.LineData, 0, len(view.Predictions))
	upper := make([]opts.LineData, 0, len(view.Predictions))
	for i, p := range view.Predictions {
		dates = append(dates, p.DS.Format(time.DateOnly))
		if i < len(view.History) {
			actual = append(actual, opts.LineData{Value: view.History[i].Y})
		} else {
			// echarts treats "-" as a gap
			actual = append(actual, opts.LineData{Value: "-"})
		}
		yhat = append(yhat, opts.LineData{Value: round2(p.Yhat)})
		lower = append(lower, opts.LineData{Value: round2(p.YhatLower)})
		upper = append(upper, opts.LineData{Value: round2(p.YhatUpper)})
	}

	line.SetXAxis(dates).
		AddSeries("y", actual).
		AddSeries("yhat", yhat).
		AddSeries("yhat_lower", lower).
		AddSeries("yhat_upper", upper)
	return line
}

// ClusterChart plots SupplierID against rating, one series per cluster.
func ClusterChart(view *ClusterView) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts("Supplier Clustering"),
		charts.WithTitleOpts(opts.Title{Title: "Supplier Clustering"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "SupplierID", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "CustomerRating", Type: "value"}),
	)

	series := make([][]opts.ScatterData, len(view.Sizes))
	for _, r := range view.Rows {
		series[r.Cluster] = append(series[r.Cluster], opts.ScatterData{
			Name:  r.CompanyName,
			Value: []interface{}{r.SupplierID, round2(r.CustomerRating)},
		})
	}
	for c, points := range series {
		scatter.AddSeries(fmt.Sprintf("Cluster %d", c), points)
	}
	return scatter
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
