// Package forecast fits an additive trend plus seasonality model to a daily
// series and projects it forward.
//
// The model is y(t) = trend(t) + Σ seasonality(t). The trend is piecewise
// linear with ridge-penalised slope changes at evenly spaced changepoints, and
// each seasonality is a truncated Fourier series. All coefficients are found in
// one regularised least squares solve.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData is returned when the history cannot support a fit.
	ErrInsufficientData = errors.New("forecast: need at least two distinct dates")
	// ErrSingular is returned when the least squares system has no stable solution.
	ErrSingular = errors.New("forecast: design matrix is singular")
	// ErrNotFitted is returned by prediction methods called before Fit.
	ErrNotFitted = errors.New("forecast: model is not fitted")
)

const (
	day = 24 * time.Hour
	// priorNoise is the assumed noise level of the scaled series; prior scales
	// are expressed relative to it.
	priorNoise = 0.1
)

// Point is one observation of the series.
type Point struct {
	DS time.Time
	Y  float64
}

// Prediction is the model output for one date.
type Prediction struct {
	DS        time.Time
	Trend     float64
	Yhat      float64
	YhatLower float64
	YhatUpper float64
}

// Config holds the model hyperparameters.
type Config struct {
	NChangepoints         int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	WeeklyOrder           int
	YearlyOrder           int
	IntervalWidth         float64
}

// DefaultConfig matches the usual defaults of additive forecasting tools.
func DefaultConfig() Config {
	return Config{
		NChangepoints:         25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		WeeklyOrder:           3,
		YearlyOrder:           10,
		IntervalWidth:         0.8,
	}
}

type seasonality struct {
	name   string
	period float64 // days
	order  int
}

// Model is a fitted (or unfitted) forecaster. It is not safe for concurrent Fit calls.
type Model struct {
	cfg Config

	history       []Point
	start         time.Time
	tScale        float64
	yScale        float64
	changepoints  []float64
	seasonalities []seasonality
	beta          []float64
	sigma         float64
}

// New returns an unfitted model.
func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// History returns the sorted series the model was fitted on.
func (m *Model) History() []Point { return m.history }

// Seasonalities names the seasonal components enabled by the last Fit.
func (m *Model) Seasonalities() []string {
	names := make([]string, 0, len(m.seasonalities))
	for _, s := range m.seasonalities {
		names = append(names, s.name)
	}
	return names
}

// Fit estimates the model coefficients from history.
func (m *Model) Fit(history []Point) error {
	pts := make([]Point, len(history))
	copy(pts, history)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].DS.Before(pts[j].DS) })

	if len(pts) < 2 {
		return ErrInsufficientData
	}
	span := pts[len(pts)-1].DS.Sub(pts[0].DS)
	if span <= 0 {
		return ErrInsufficientData
	}

	m.history = pts
	m.start = pts[0].DS
	m.tScale = span.Seconds()
	m.yScale = 0
	for _, p := range pts {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("forecast: non-finite value at %s", p.DS.Format(time.DateOnly))
		}
		m.yScale = math.Max(m.yScale, math.Abs(p.Y))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}
	m.changepoints = m.placeChangepoints()
	m.seasonalities = m.autoSeasonalities(span)

	n := len(pts)
	cols := m.numColumns()
	nCP := len(m.changepoints)
	nSeason := cols - 2 - nCP
	rows := n + nCP + nSeason

	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for i, p := range pts {
		x.SetRow(i, m.features(p.DS))
		y.SetVec(i, p.Y/m.yScale)
	}

	// Ridge rows shrink slope changes and seasonal amplitudes towards zero.
	cpWeight := priorNoise / m.cfg.ChangepointPriorScale
	seasonWeight := priorNoise / m.cfg.SeasonalityPriorScale
	r := n
	for j := 0; j < nCP; j++ {
		x.Set(r, 2+j, cpWeight)
		r++
	}
	for j := 0; j < nSeason; j++ {
		x.Set(r, 2+nCP+j, seasonWeight)
		r++
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	m.beta = make([]float64, cols)
	for j := range m.beta {
		m.beta[j] = beta.AtVec(j)
		if math.IsNaN(m.beta[j]) {
			return ErrSingular
		}
	}

	var sse float64
	for _, p := range pts {
		res := p.Y/m.yScale - m.dot(m.features(p.DS))
		sse += res * res
	}
	dof := n - cols
	if dof < 1 {
		dof = n
	}
	m.sigma = math.Sqrt(sse / float64(dof))
	return nil
}

// MakeFuture returns the history dates followed by periods dates after the
// last history date.
func (m *Model) MakeFuture(periods int, freq Frequency) ([]time.Time, error) {
	if m.beta == nil {
		return nil, ErrNotFitted
	}
	if periods < 0 {
		return nil, fmt.Errorf("forecast: negative periods %d", periods)
	}
	dates := make([]time.Time, 0, len(m.history)+periods)
	for _, p := range m.history {
		dates = append(dates, p.DS)
	}
	return append(dates, FutureDates(m.history[len(m.history)-1].DS, periods, freq)...), nil
}

// Predict evaluates the fitted model on dates.
func (m *Model) Predict(dates []time.Time) ([]Prediction, error) {
	if m.beta == nil {
		return nil, ErrNotFitted
	}
	z := distuv.UnitNormal.Quantile(0.5 + m.cfg.IntervalWidth/2)
	band := z * m.sigma * m.yScale

	out := make([]Prediction, 0, len(dates))
	for _, ds := range dates {
		f := m.features(ds)
		trend := 0.0
		for j := 0; j < 2+len(m.changepoints); j++ {
			trend += f[j] * m.beta[j]
		}
		yhat := m.dot(f) * m.yScale
		out = append(out, Prediction{
			DS:        ds,
			Trend:     trend * m.yScale,
			Yhat:      yhat,
			YhatLower: yhat - band,
			YhatUpper: yhat + band,
		})
	}
	return out, nil
}

func (m *Model) numColumns() int {
	cols := 2 + len(m.changepoints)
	for _, s := range m.seasonalities {
		cols += 2 * s.order
	}
	return cols
}

func (m *Model) scaledTime(ds time.Time) float64 {
	return ds.Sub(m.start).Seconds() / m.tScale
}

// features builds one design row: intercept, slope, hinge terms, then sin/cos
// pairs for every seasonality.
func (m *Model) features(ds time.Time) []float64 {
	t := m.scaledTime(ds)
	row := make([]float64, 0, m.numColumns())
	row = append(row, 1, t)
	for _, c := range m.changepoints {
		row = append(row, math.Max(0, t-c))
	}
	days := float64(ds.Unix()) / day.Seconds()
	for _, s := range m.seasonalities {
		for k := 1; k <= s.order; k++ {
			arg := 2 * math.Pi * float64(k) * days / s.period
			row = append(row, math.Sin(arg), math.Cos(arg))
		}
	}
	return row
}

func (m *Model) dot(f []float64) float64 {
	var s float64
	for j, v := range f {
		s += v * m.beta[j]
	}
	return s
}

func (m *Model) placeChangepoints() []float64 {
	histSize := int(math.Floor(float64(len(m.history)) * m.cfg.ChangepointRange))
	n := m.cfg.NChangepoints
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}
	cps := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		cps = append(cps, m.scaledTime(m.history[idx].DS))
	}
	return cps
}

func (m *Model) autoSeasonalities(span time.Duration) []seasonality {
	minGap := span
	for i := 1; i < len(m.history); i++ {
		if gap := m.history[i].DS.Sub(m.history[i-1].DS); gap > 0 && gap < minGap {
			minGap = gap
		}
	}
	var out []seasonality
	if m.cfg.YearlyOrder > 0 && span >= 730*day {
		out = append(out, seasonality{name: "yearly", period: 365.25, order: m.cfg.YearlyOrder})
	}
	if m.cfg.WeeklyOrder > 0 && span >= 14*day && minGap < 7*day {
		out = append(out, seasonality{name: "weekly", period: 7, order: m.cfg.WeeklyOrder})
	}
	return out
}
