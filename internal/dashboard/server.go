package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer interface {
	Render(w io.Writer) error
}

// NewRouter wires the dashboard pages, chart frames, health and metrics
// endpoints onto a gin engine.
func NewRouter(svc *Service, metrics *Metrics, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), errorPage(logger))

	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"chartQuery": chartQuery,
		"isSelected": isSelected,
	}).ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", HandleIndex(svc))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	chartGroup := router.Group("/charts")
	{
		chartGroup.GET("/bar", HandleBarChart(svc))
		chartGroup.GET("/forecast", HandleForecastChart(svc))
		chartGroup.GET("/clusters", HandleClusterChart(svc))
	}
	return router
}

// HandleIndex renders the supplier table, filters and chart frames.
func HandleIndex(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := svc.Overview(c.Request.Context(), selectionFromQuery(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Overview": ov,
			"Notice":   SimulationNotice,
		})
	}
}

func HandleBarChart(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := svc.Overview(c.Request.Context(), selectionFromQuery(c))
		if err != nil {
			_ = c.Error(err)
			return
		}
		writeChart(c, BarChart(ov.Selection.Company, ov.Filtered))
	}
}

func HandleForecastChart(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Forecast(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		writeChart(c, ForecastChart(view))
	}
}

func HandleClusterChart(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Clusters(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		writeChart(c, ClusterChart(view))
	}
}

func writeChart(c *gin.Context, chart renderer) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := chart.Render(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// selectionFromQuery reads ?company=...&city=...&city=... . Without any city
// parameter every city is selected.
func selectionFromQuery(c *gin.Context) Selection {
	sel := Selection{Company: c.Query("company")}
	if cities, ok := c.GetQueryArray("city"); ok {
		sel.Cities = cities
	}
	return sel
}

func chartQuery(sel Selection) template.URL {
	q := url.Values{}
	q.Set("company", sel.Company)
	for _, city := range sel.Cities {
		q.Add("city", city)
	}
	return template.URL(q.Encode())
}

func isSelected(value string, set []string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

// statusFor maps selection errors to 422 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoCompany), errors.Is(err, ErrUnknownCompany), errors.Is(err, ErrEmptySelection):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorPage(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := statusFor(err)
		logger.Error("render failed", "path", c.Request.URL.Path, "status", status, "error", err)
		if c.Writer.Written() {
			return
		}
		c.HTML(status, "error.html", gin.H{"Status": status, "Error": err.Error()})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
