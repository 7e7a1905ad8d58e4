package ui

import (
	"html/template"

	"github.com/dtca-portal/dtca-portal/internal/analytics/svg"
	"github.com/dtca-portal/dtca-portal/internal/dashboard"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
)

// NavItem is one entry of the sidebar navigation.
type NavItem struct {
	View   dashboard.View
	Label  string
	Active bool
}

// SubViewOption is one entry of the analytics sub-view selector.
type SubViewOption struct {
	SubView dashboard.AnalyticsSubView
	Label   string
	Active  bool
}

// BarRow is a labelled linear progress bar. Width is already clamped.
type BarRow struct {
	Label      string  `json:"label"`
	Display    string  `json:"display"`
	Value      float64 `json:"value"`
	Percent    float64 `json:"percent"`
	Width      float64 `json:"width"`
	Color      string  `json:"color,omitempty"`
	ColorClass string  `json:"color_class,omitempty"`
}

// FunnelRow is a marketing funnel stage.
type FunnelRow struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Width   float64 `json:"width"`
	Color   string  `json:"color,omitempty"`
}

// LegendItem labels one donut slice.
type LegendItem struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color,omitempty"`
}

// ActivityRow is a recent activity entry with the actor's initials.
type ActivityRow struct {
	Action   string `json:"action"`
	User     string `json:"user"`
	Time     string `json:"time"`
	Initials string `json:"initials"`
}

// StudentRow is a row of the student table.
type StudentRow struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Course        string  `json:"course"`
	Initials      string  `json:"initials"`
	Progress      float64 `json:"progress"`
	ProgressWidth float64 `json:"progress_width"`
	Status        string  `json:"status"`
	StatusClass   string  `json:"status_class"`
}

// CohortRing is a per-cohort progress ring.
type CohortRing struct {
	Label    string        `json:"label"`
	Students float64       `json:"students"`
	Progress float64       `json:"progress"`
	Color    string        `json:"color,omitempty"`
	SVG      template.HTML `json:"svg"`
}

// CompletionRow compares monthly completions with their target.
type CompletionRow struct {
	Label      string  `json:"label"`
	Actual     float64 `json:"actual"`
	Target     float64 `json:"target"`
	Percent    float64 `json:"percent"`
	Width      float64 `json:"width"`
	ColorClass string  `json:"color_class"`
}

// OverviewViewModel feeds the landing view.
type OverviewViewModel struct {
	Stats         []fixtures.StatCard `json:"stats"`
	Enrollment    []BarRow            `json:"enrollment"`
	Activities    []ActivityRow       `json:"activities"`
	TotalStudents int                 `json:"total_students"`
}

// StudentsViewModel feeds the student directory.
type StudentsViewModel struct {
	Rows      []StudentRow `json:"rows"`
	Total     int          `json:"total"`
	Active    int          `json:"active"`
	Completed int          `json:"completed"`
}

// FinanceViewModel feeds the finance and billing analytics.
type FinanceViewModel struct {
	KPIs             []fixtures.StatCard `json:"kpis"`
	Revenue          []BarRow            `json:"revenue"`
	PaymentStatus    []LegendItem        `json:"payment_status"`
	PaymentStatusSVG template.HTML       `json:"payment_status_svg"`
	PaymentMethods   []BarRow            `json:"payment_methods"`
}

// MarketingViewModel feeds the marketing analytics.
type MarketingViewModel struct {
	KPIs       []fixtures.StatCard `json:"kpis"`
	Funnel     []FunnelRow         `json:"funnel"`
	Traffic    []LegendItem        `json:"traffic"`
	TrafficSVG template.HTML       `json:"traffic_svg"`
	Campaigns  []fixtures.Campaign `json:"campaigns"`
}

// AdmissionsViewModel feeds the admissions analytics.
type AdmissionsViewModel struct {
	KPIs     []fixtures.StatCard `json:"kpis"`
	Pipeline []BarRow            `json:"pipeline"`
	Sources  []BarRow            `json:"sources"`
	Timeline []BarRow            `json:"timeline"`
}

// EnrollmentViewModel feeds the enrollment analytics.
type EnrollmentViewModel struct {
	KPIs           []fixtures.StatCard `json:"kpis"`
	Cohorts        []CohortRing        `json:"cohorts"`
	Completions    []CompletionRow     `json:"completions"`
	CompletionsSVG template.HTML       `json:"completions_svg"`
	Outcomes       []fixtures.StatCard `json:"outcomes"`
}

// AnalyticsViewModel carries the panel of the active sub-view only.
type AnalyticsViewModel struct {
	SubView    dashboard.AnalyticsSubView `json:"sub_view"`
	Finance    *FinanceViewModel          `json:"finance,omitempty"`
	Marketing  *MarketingViewModel        `json:"marketing,omitempty"`
	Admissions *AdmissionsViewModel       `json:"admissions,omitempty"`
	Enrollment *EnrollmentViewModel       `json:"enrollment,omitempty"`
}

// PageViewModel combines navigation state with the active view's data.
// Exactly one of Overview, Students or Analytics is set for views that
// carry content.
type PageViewModel struct {
	State     dashboard.State
	Nav       []NavItem
	SubViews  []SubViewOption
	Heading   string
	Overview  *OverviewViewModel
	Students  *StudentsViewModel
	Analytics *AnalyticsViewModel
}

// DonutRenderer abstracts SVG donut rendering for the dashboard.
type DonutRenderer interface {
	Donut(slices []svg.Slice, opts svg.DonutOpts) (template.HTML, error)
}

// RingRenderer abstracts SVG progress ring rendering.
type RingRenderer interface {
	Ring(progress float64, opts svg.RingOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG actual-vs-target bar rendering.
type BarRenderer interface {
	Bars(width, height int, groups []svg.BarGroup, opts svg.BarOpts) (template.HTML, error)
}

// NavItems lists every top-level view in sidebar order.
func NavItems(active dashboard.View) []NavItem {
	views := dashboard.Views()
	items := make([]NavItem, 0, len(views))
	for _, v := range views {
		items = append(items, NavItem{View: v, Label: v.Label(), Active: v == active})
	}
	return items
}

// SubViewOptions lists every analytics sub-view in selector order.
func SubViewOptions(active dashboard.AnalyticsSubView) []SubViewOption {
	subs := dashboard.AnalyticsSubViews()
	items := make([]SubViewOption, 0, len(subs))
	for _, s := range subs {
		items = append(items, SubViewOption{SubView: s, Label: s.Label(), Active: s == active})
	}
	return items
}
