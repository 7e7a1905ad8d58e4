package analytics

import (
	"strconv"

	"github.com/dtca-portal/dtca-portal/internal/analytics/svg"
	"github.com/dtca-portal/dtca-portal/internal/analytics/ui"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
	"github.com/dtca-portal/dtca-portal/internal/presenter"
)

// palette maps fixture colour names to chart fills.
var palette = map[string]string{
	"on-time":   "#10b981",
	"late":      "#f59e0b",
	"overdue":   "#ef4444",
	"red":       "#ef4444",
	"orange":    "#f97316",
	"yellow":    "#eab308",
	"green":     "#10b981",
	"blue":      "#3b82f6",
	"blue-dark": "#2563eb",
	"blue-deep": "#1d4ed8",
	"indigo":    "#6366f1",
	"purple":    "#8b5cf6",
	"brand":     "#4f46e5",
	"gray":      "#6b7280",
}

func fill(name string) string {
	if hex, ok := palette[name]; ok {
		return hex
	}
	return name
}

func display(rec fixtures.MetricRecord) string {
	if rec.Display != "" {
		return rec.Display
	}
	return strconv.FormatFloat(rec.Value, 'f', -1, 64)
}

func barRows(series fixtures.Series) []ui.BarRow {
	rows := make([]ui.BarRow, 0, len(series))
	for _, rec := range series {
		rows = append(rows, ui.BarRow{
			Label:   rec.Label,
			Display: display(rec),
			Value:   rec.Value,
			Percent: rec.Percent,
			Width:   presenter.BarWidthPercent(rec.Percent),
			Color:   rec.Color,
		})
	}
	return rows
}

// shareRows sizes bars by each record's share of the series total.
func shareRows(series fixtures.Series) []ui.BarRow {
	total := 0.0
	for _, rec := range series {
		total += rec.Value
	}
	rows := barRows(series)
	for i := range rows {
		if total > 0 {
			rows[i].Width = presenter.BarWidthPercent(rows[i].Value / total * 100)
		}
	}
	return rows
}

func legend(series fixtures.Series) ([]ui.LegendItem, []svg.Slice) {
	items := make([]ui.LegendItem, 0, len(series))
	slices := make([]svg.Slice, 0, len(series))
	for i, share := range series.Percents() {
		rec := series[i]
		items = append(items, ui.LegendItem{Label: rec.Label, Value: rec.Value, Percent: share, Color: rec.Color})
		slices = append(slices, svg.Slice{Label: rec.Label, Value: share, Color: fill(rec.Color)})
	}
	return items, slices
}

func buildOverview(src fixtures.Overview) ui.OverviewViewModel {
	activities := make([]ui.ActivityRow, 0, len(src.Activities))
	for _, a := range src.Activities {
		activities = append(activities, ui.ActivityRow{
			Action:   a.Action,
			User:     a.User,
			Time:     a.Time,
			Initials: presenter.Initials(a.User),
		})
	}
	return ui.OverviewViewModel{
		Stats:         src.Stats,
		Enrollment:    barRows(src.Enrollment),
		Activities:    activities,
		TotalStudents: src.TotalStudents,
	}
}

func buildStudents(src []fixtures.StudentRecord) ui.StudentsViewModel {
	vm := ui.StudentsViewModel{Rows: make([]ui.StudentRow, 0, len(src)), Total: len(src)}
	for _, st := range src {
		switch st.Status {
		case fixtures.StatusActive:
			vm.Active++
		case fixtures.StatusCompleted:
			vm.Completed++
		}
		vm.Rows = append(vm.Rows, ui.StudentRow{
			Name:          st.Name,
			Email:         st.Email,
			Course:        st.Course,
			Initials:      presenter.Initials(st.Name),
			Progress:      st.Progress,
			ProgressWidth: presenter.BarWidthPercent(st.Progress),
			Status:        st.Status,
			StatusClass:   presenter.StatusClass(st.Status),
		})
	}
	return vm
}

func buildFinance(src fixtures.Finance, r Renderers) (ui.FinanceViewModel, error) {
	items, slices := legend(src.PaymentStatus)
	vm := ui.FinanceViewModel{
		KPIs:           src.KPIs,
		Revenue:        barRows(src.Revenue),
		PaymentStatus:  items,
		PaymentMethods: barRows(src.PaymentMethods),
	}
	if len(slices) > 0 && r.Donut != nil {
		chart, err := r.Donut.Donut(slices, svg.DonutOpts{Title: "Payment Status", Description: "Share of invoices by payment status"})
		if err != nil {
			return vm, err
		}
		vm.PaymentStatusSVG = chart
	}
	return vm, nil
}

func buildMarketing(src fixtures.Marketing, r Renderers) (ui.MarketingViewModel, error) {
	funnel := make([]ui.FunnelRow, 0, len(src.Funnel))
	for _, rec := range src.Funnel {
		funnel = append(funnel, ui.FunnelRow{
			Label:   rec.Label,
			Value:   rec.Value,
			Percent: rec.Percent,
			Width:   presenter.BarWidthPercent(presenter.FunnelSegmentWidthPercent(rec.Percent)),
			Color:   rec.Color,
		})
	}
	items, slices := legend(src.Traffic)
	vm := ui.MarketingViewModel{
		KPIs:      src.KPIs,
		Funnel:    funnel,
		Traffic:   items,
		Campaigns: src.Campaigns,
	}
	if len(slices) > 0 && r.Donut != nil {
		chart, err := r.Donut.Donut(slices, svg.DonutOpts{Title: "Traffic Sources", Description: "Share of visitors by source"})
		if err != nil {
			return vm, err
		}
		vm.TrafficSVG = chart
	}
	return vm, nil
}

func buildAdmissions(src fixtures.Admissions) ui.AdmissionsViewModel {
	return ui.AdmissionsViewModel{
		KPIs:     src.KPIs,
		Pipeline: barRows(src.Pipeline),
		Sources:  barRows(src.Sources),
		Timeline: shareRows(src.Timeline),
	}
}

func buildEnrollment(src fixtures.Enrollment, r Renderers) (ui.EnrollmentViewModel, error) {
	vm := ui.EnrollmentViewModel{
		KPIs:        src.KPIs,
		Cohorts:     make([]ui.CohortRing, 0, len(src.Cohorts)),
		Completions: make([]ui.CompletionRow, 0, len(src.Completions)),
		Outcomes:    src.Outcomes,
	}
	for _, rec := range src.Cohorts {
		ring := ui.CohortRing{Label: rec.Label, Students: rec.Value, Progress: rec.Percent, Color: rec.Color}
		if r.Ring != nil {
			chart, err := r.Ring.Ring(rec.Percent, svg.RingOpts{Title: rec.Label, Color: fill(rec.Color), ShowLabel: true})
			if err != nil {
				return vm, err
			}
			ring.SVG = chart
		}
		vm.Cohorts = append(vm.Cohorts, ring)
	}
	groups := make([]svg.BarGroup, 0, len(src.Completions))
	for _, rec := range src.Completions {
		class := presenter.CompletionColorClass(rec.Percent)
		vm.Completions = append(vm.Completions, ui.CompletionRow{
			Label:      rec.Label,
			Actual:     rec.Value,
			Target:     rec.Target,
			Percent:    rec.Percent,
			Width:      presenter.BarWidthPercent(rec.Percent),
			ColorClass: string(class),
		})
		groups = append(groups, svg.BarGroup{Label: rec.Label, Actual: rec.Value, Target: rec.Target, Class: string(class)})
	}
	if len(groups) > 0 && r.Bars != nil {
		chart, err := r.Bars.Bars(0, 0, groups, svg.BarOpts{Title: "Monthly Completions", ActualLabel: "Completed", TargetLabel: "Target"})
		if err != nil {
			return vm, err
		}
		vm.CompletionsSVG = chart
	}
	return vm, nil
}
