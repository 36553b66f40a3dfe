package dashboard

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"supplier-dashboard/internal/data"
	"supplier-dashboard/internal/db"
)

var tracer = otel.Tracer("supplier-dashboard/dashboard")

// Overview is the supplier table plus the filtered view for one selection.
type Overview struct {
	Suppliers []data.Supplier
	Companies []string
	Cities    []string
	Selection Selection
	Filtered  []data.Supplier
	// HasOrderHistory is false when the forecast runs on simulated data.
	HasOrderHistory bool
}

// Service runs each dashboard view against a fresh read-only connection.
type Service struct {
	cfg     db.Config
	metrics *Metrics
	newRand func() *rand.Rand
}

// NewService returns a Service reading from the store described by cfg.
func NewService(cfg db.Config, metrics *Metrics) *Service {
	return &Service{
		cfg:     cfg,
		metrics: metrics,
		newRand: func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	}
}

// WithRand replaces the per-render random source, mainly for tests.
func (s *Service) WithRand(fn func() *rand.Rand) *Service {
	s.newRand = fn
	return s
}

// Overview loads the supplier table and applies sel. Zero fields of sel fall
// back to DefaultSelection.
func (s *Service) Overview(ctx context.Context, sel Selection) (*Overview, error) {
	var ov *Overview
	err := s.render(ctx, "overview", func(ctx context.Context, gdb *gorm.DB) error {
		rows, err := s.loadSuppliers(ctx, gdb)
		if err != nil {
			return err
		}
		def := DefaultSelection(rows)
		if sel.Company == "" {
			sel.Company = def.Company
		}
		if sel.Cities == nil {
			sel.Cities = def.Cities
		}
		filtered, err := FilterSuppliers(rows, sel)
		if err != nil {
			return err
		}
		cols, err := data.SupplierColumns(gdb)
		if err != nil {
			return fmt.Errorf("inspect supplier columns: %w", err)
		}
		ov = &Overview{
			Suppliers:       rows,
			Companies:       Companies(rows),
			Cities:          Cities(rows),
			Selection:       sel,
			Filtered:        filtered,
			HasOrderHistory: data.HasOrderHistory(cols),
		}
		return nil
	})
	return ov, err
}

// Forecast fits the forecasting model on the supplier order history, or on
// simulated demand when the store has none.
func (s *Service) Forecast(ctx context.Context) (*ForecastView, error) {
	var view *ForecastView
	err := s.render(ctx, "forecast", func(ctx context.Context, gdb *gorm.DB) error {
		series, simulated, err := LoadSeries(ctx, gdb, s.newRand())
		if err != nil {
			return err
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Bool("forecast.simulated", simulated),
			attribute.Int("forecast.points", len(series)),
		)
		view, err = BuildForecast(series, simulated)
		return err
	})
	return view, err
}

// Clusters assigns every supplier to one of ClusterCount groups.
func (s *Service) Clusters(ctx context.Context) (*ClusterView, error) {
	var view *ClusterView
	err := s.render(ctx, "clusters", func(ctx context.Context, gdb *gorm.DB) error {
		rows, err := s.loadSuppliers(ctx, gdb)
		if err != nil {
			return err
		}
		view, err = BuildClusters(rows, s.newRand())
		return err
	})
	return view, err
}

func (s *Service) loadSuppliers(ctx context.Context, gdb *gorm.DB) ([]data.Supplier, error) {
	rows, err := data.LoadSuppliers(ctx, gdb)
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	s.metrics.SuppliersLoaded.Set(float64(len(rows)))
	return rows, nil
}

// render opens the store, runs fn inside a span and records metrics.
func (s *Service) render(ctx context.Context, view string, fn func(context.Context, *gorm.DB) error) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "dashboard."+view)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.observe(view, start, err)
	}()

	gdb, err := db.OpenReadOnly(s.cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close(gdb)

	return fn(ctx, gdb)
}
