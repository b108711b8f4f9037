// internal/app/features/kpi/types.go
package kpi

import (
	"html/template"
	"time"

	kpistore "github.com/dalemusser/groomhub/internal/app/store/kpi"
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
)

// filters is the parsed date range for one KPI request.
type filters struct {
	From    time.Time
	To      time.Time
	FromRaw string
	ToRaw   string
	Seq     string
}

// pageData is the KPI page shell view model. Sections load through
// HTMX fragment endpoints.
type pageData struct {
	viewdata.BaseVM
	Filters     filters
	FilterError string
}

// revenueData backs the revenue summary fragment.
type revenueData struct {
	Seq      string
	Total    string
	Previous string
	Trend    float64
	IsNew    bool
	Count    int
}

// chartData backs a fragment that is mostly one chart.
type chartData struct {
	Seq   string
	Chart template.HTML
	Empty bool
}

// arpuData backs the ARPU fragment.
type arpuData struct {
	Seq       string
	Average   string
	Customers int
	Chart     template.HTML
	Empty     bool
}

// topCustomerRow is one table row of either top-customers table.
type topCustomerRow struct {
	Name     string
	Revenue  string
	Services int
}

// topCustomersData backs the top-customers fragment.
type topCustomersData struct {
	Seq       string
	ByRevenue []topCustomerRow
	ByCount   []topCustomerRow
}

// breedRow is one row of the breeds table.
type breedRow struct {
	Breed    string
	Services int
	Revenue  string
}

// territoryRow is one row of the territories table.
type territoryRow struct {
	Territory string
	Revenue   string
	Customers int
	Services  int
}

// tableData is a generic fragment with rows only.
type tableData[T any] struct {
	Seq  string
	Rows []T
}

// cohortData backs the cohort retention fragment.
type cohortData struct {
	Seq     string
	Offsets []int
	Rows    []kpistore.CohortRow
}

// funnelData backs the funnel fragment.
type funnelData struct {
	Seq    string
	Funnel kpistore.Funnel
}
