// internal/app/features/kpi/kpi.go
package kpi

import (
	"context"
	"html/template"
	"net/http"
	"sort"
	"time"

	kpistore "github.com/dalemusser/groomhub/internal/app/store/kpi"
	"github.com/dalemusser/groomhub/internal/app/system/format"
	"github.com/dalemusser/groomhub/internal/app/system/normalize"
	"github.com/dalemusser/groomhub/internal/app/system/timeouts"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

const (
	dateLayout = "2006-01-02"
	topN       = 10
	// cohortOffsets is how many months of retention each cohort shows.
	cohortOffsets = 6
)

// parseFilters reads the KPI date range, defaulting to the last six
// months. Returns a warning message when from > to.
func parseFilters(r *http.Request) (filters, string) {
	f := filters{
		FromRaw: normalize.QueryParam(query.Get(r, "from")),
		ToRaw:   normalize.QueryParam(query.Get(r, "to")),
		Seq:     normalize.QueryParam(query.Get(r, "seq")),
	}

	if f.FromRaw != "" {
		if t, err := time.Parse(dateLayout, f.FromRaw); err == nil {
			f.From = t.UTC()
		}
	}
	if f.ToRaw != "" {
		if t, err := time.Parse(dateLayout, f.ToRaw); err == nil {
			f.To = t.UTC()
		}
	}

	if f.From.IsZero() && f.To.IsZero() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		f.From, f.To = today.AddDate(0, -6, 0), today
		f.FromRaw = f.From.Format(dateLayout)
		f.ToRaw = f.To.Format(dateLayout)
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, "Start date must be on or before the end date."
	}
	return f, ""
}

// fragment wraps the shared parse/guard/timeout plumbing for the
// section endpoints.
func (h *Handler) fragment(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, f filters) error) {
	f, filterErr := parseFilters(r)
	if filterErr != "" {
		w.Header().Set("HX-Retarget", "#kpi-warning")
		w.Header().Set("HX-Reswap", "innerHTML")
		templates.Render(w, r, "kpi_warning", pageData{FilterError: filterErr, Filters: f})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := fn(ctx, f); err != nil {
		h.ErrLog.HTMXLogServerError(w, r, "database error loading kpi section", err, "Failed to fetch KPI data.", "/kpi")
	}
}

// ServeDashboard renders the KPI page shell. Sections lazy-load over
// HTMX so a slow aggregation cannot block the page.
// GET /kpi
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	f, filterErr := parseFilters(r)

	data := pageData{
		BaseVM:      viewdata.NewBaseVM(r, h.DB, "Business KPIs", "/"),
		Filters:     f,
		FilterError: filterErr,
	}
	templates.Render(w, r, "kpi", data)
}

// ServeRevenue renders the revenue summary fragment.
// GET /kpi/revenue
func (h *Handler) ServeRevenue(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		sum, err := kpistore.New(h.DB).FetchRevenueSummary(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		templates.Render(w, r, "kpi_revenue", revenueData{
			Seq:      f.Seq,
			Total:    format.INR(sum.Total),
			Previous: format.INR(sum.PreviousTotal),
			Trend:    sum.TrendPercent,
			IsNew:    sum.IsNew,
			Count:    sum.Count,
		})
		return nil
	})
}

// ServeCustomerGrowth renders the new-customers-per-month chart.
// GET /kpi/customer-growth
func (h *Handler) ServeCustomerGrowth(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		points, err := kpistore.New(h.DB).FetchCustomerGrowth(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		return h.renderChartFragment(w, r, f, "New Customers", "customers", points, barChartHTML)
	})
}

// ServeMonthlyRevenue renders the revenue-per-month chart.
// GET /kpi/monthly-revenue
func (h *Handler) ServeMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		points, err := kpistore.New(h.DB).FetchMonthlyRevenue(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		return h.renderChartFragment(w, r, f, "Monthly Revenue", "revenue", points, barChartHTML)
	})
}

// ServeARPU renders average revenue per customer with its monthly series.
// GET /kpi/arpu
func (h *Handler) ServeARPU(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		arpu, err := kpistore.New(h.DB).FetchARPU(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		data := arpuData{
			Seq:       f.Seq,
			Average:   format.INR(arpu.Average),
			Customers: arpu.Customers,
			Empty:     len(arpu.Monthly) == 0,
		}
		if !data.Empty {
			chart, err := lineChartHTML("Monthly ARPU", "arpu", arpu.Monthly)
			if err != nil {
				return err
			}
			data.Chart = chart
		}
		templates.Render(w, r, "kpi_arpu", data)
		return nil
	})
}

// ServeTopCustomers renders the top customer tables.
// GET /kpi/top-customers
func (h *Handler) ServeTopCustomers(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		top, err := kpistore.New(h.DB).FetchTopCustomers(ctx, f.From, f.To, topN)
		if err != nil {
			return err
		}
		data := topCustomersData{Seq: f.Seq}
		for _, c := range top {
			data.ByRevenue = append(data.ByRevenue, topCustomerRow{
				Name:     c.CustomerName,
				Revenue:  format.INR(c.Revenue),
				Services: c.Services,
			})
		}
		// Same rows reordered by service count
		byCount := make([]kpistore.TopCustomer, len(top))
		copy(byCount, top)
		sortByServices(byCount)
		for _, c := range byCount {
			data.ByCount = append(data.ByCount, topCustomerRow{
				Name:     c.CustomerName,
				Revenue:  format.INR(c.Revenue),
				Services: c.Services,
			})
		}
		templates.Render(w, r, "kpi_top_customers", data)
		return nil
	})
}

// ServeBreeds renders the per-breed service table.
// GET /kpi/breeds
func (h *Handler) ServeBreeds(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		stats, err := kpistore.New(h.DB).FetchBreedStats(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		data := tableData[breedRow]{Seq: f.Seq}
		for _, s := range stats {
			data.Rows = append(data.Rows, breedRow{
				Breed:    s.Breed,
				Services: s.Services,
				Revenue:  format.INR(s.Revenue),
			})
		}
		templates.Render(w, r, "kpi_breeds", data)
		return nil
	})
}

// ServeTerritories renders the per-territory table.
// GET /kpi/territories
func (h *Handler) ServeTerritories(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		stats, err := kpistore.New(h.DB).FetchTerritoryStats(ctx, f.From, f.To)
		if err != nil {
			return err
		}
		data := tableData[territoryRow]{Seq: f.Seq}
		for _, s := range stats {
			data.Rows = append(data.Rows, territoryRow{
				Territory: s.Territory,
				Revenue:   format.INR(s.Revenue),
				Customers: s.Customers,
				Services:  s.Services,
			})
		}
		templates.Render(w, r, "kpi_territories", data)
		return nil
	})
}

// ServeCohorts renders the monthly cohort retention grid.
// GET /kpi/cohorts
func (h *Handler) ServeCohorts(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		rows, err := kpistore.New(h.DB).FetchCohorts(ctx, f.From, f.To, cohortOffsets)
		if err != nil {
			return err
		}
		data := cohortData{Seq: f.Seq, Rows: rows}
		for i := 0; i < cohortOffsets; i++ {
			data.Offsets = append(data.Offsets, i)
		}
		templates.Render(w, r, "kpi_cohorts", data)
		return nil
	})
}

// ServeFunnel renders lead-to-completed conversion counts.
// GET /kpi/funnel
func (h *Handler) ServeFunnel(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, func(ctx context.Context, f filters) error {
		funnel, err := kpistore.New(h.DB).FetchFunnel(ctx)
		if err != nil {
			return err
		}
		templates.Render(w, r, "kpi_funnel", funnelData{Seq: f.Seq, Funnel: funnel})
		return nil
	})
}

type chartFn func(title, seriesName string, points []kpistore.MonthPoint) (template.HTML, error)

func (h *Handler) renderChartFragment(w http.ResponseWriter, r *http.Request, f filters, title, series string, points []kpistore.MonthPoint, chart chartFn) error {
	data := chartData{Seq: f.Seq, Empty: len(points) == 0}
	if !data.Empty {
		html, err := chart(title, series, points)
		if err != nil {
			return err
		}
		data.Chart = html
	}
	templates.Render(w, r, "kpi_chart", data)
	return nil
}

func sortByServices(rows []kpistore.TopCustomer) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Services > rows[j].Services
	})
}
