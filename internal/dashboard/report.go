package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteReport renders the dashboard views as plain-text tables.
func WriteReport(w io.Writer, ov *Overview, fv *ForecastView, cv *ClusterView) error {
	fmt.Fprintf(w, "Supplier Performance Dashboard\n\n")
	fmt.Fprintf(w, "Details for %s (%d of %d suppliers)\n", ov.Selection.Company, len(ov.Filtered), len(ov.Suppliers))
	details := tablewriter.NewWriter(w)
	details.Header("SupplierID", "CompanyName", "City", "Country")
	for _, s := range ov.Filtered {
		if err := details.Append([]string{strconv.FormatUint(uint64(s.SupplierID), 10), s.CompanyName, s.City, s.Country}); err != nil {
			return err
		}
	}
	if err := details.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFuture Trend Prediction (%d history points)\n", len(fv.History))
	if fv.Notice != "" {
		fmt.Fprintln(w, fv.Notice)
	}
	projection := tablewriter.NewWriter(w)
	projection.Header("ds", "yhat", "yhat_lower", "yhat_upper")
	for _, p := range fv.Projection() {
		row := []string{p.DS.Format(time.DateOnly), formatFloat(p.Yhat), formatFloat(p.YhatLower), formatFloat(p.YhatUpper)}
		if err := projection.Append(row); err != nil {
			return err
		}
	}
	if err := projection.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSupplier Clustering (inertia %s)\n", formatFloat(cv.Inertia))
	sizes := tablewriter.NewWriter(w)
	sizes.Header("Cluster", "Suppliers")
	for c, n := range cv.Sizes {
		if err := sizes.Append([]string{strconv.Itoa(c), strconv.Itoa(n)}); err != nil {
			return err
		}
	}
	if err := sizes.Render(); err != nil {
		return err
	}

	members := tablewriter.NewWriter(w)
	members.Header("SupplierID", "CompanyName", "CustomerRating", "Cluster")
	for _, r := range cv.Rows {
		row := []string{strconv.FormatUint(uint64(r.SupplierID), 10), r.CompanyName, formatFloat(r.CustomerRating), strconv.Itoa(r.Cluster)}
		if err := members.Append(row); err != nil {
			return err
		}
	}
	return members.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
