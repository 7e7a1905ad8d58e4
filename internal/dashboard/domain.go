package dashboard

import (
	"errors"
	"strings"
)

// ErrInvalidArgument reports a view or sub-view tag outside the closed set.
var ErrInvalidArgument = errors.New("dashboard: invalid argument")

// View is a top-level navigable section of the dashboard.
type View string

const (
	ViewOverview  View = "overview"
	ViewStudents  View = "students"
	ViewCourses   View = "courses"
	ViewAnalytics View = "analytics"
	ViewFinance   View = "finance"
	ViewCalendar  View = "calendar"
	ViewReports   View = "reports"
)

var views = []View{ViewOverview, ViewStudents, ViewCourses, ViewAnalytics, ViewFinance, ViewCalendar, ViewReports}

var viewLabels = map[View]string{
	ViewOverview:  "Dashboard",
	ViewStudents:  "Students",
	ViewCourses:   "Courses",
	ViewAnalytics: "Analytics",
	ViewFinance:   "Finance",
	ViewCalendar:  "Calendar",
	ViewReports:   "Reports",
}

// Views returns every view in sidebar order.
func Views() []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}

// Valid reports whether v belongs to the closed set.
func (v View) Valid() bool {
	_, ok := viewLabels[v]
	return ok
}

// Label returns the navigation label for the view.
func (v View) Label() string {
	return viewLabels[v]
}

func (v View) String() string { return string(v) }

// ParseView converts a transport value into a View.
func ParseView(raw string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		return "", invalidView(View(raw))
	}
	return v, nil
}

// AnalyticsSubView selects the metric category shown inside the analytics view.
type AnalyticsSubView string

const (
	SubViewFinance    AnalyticsSubView = "finance"
	SubViewMarketing  AnalyticsSubView = "marketing"
	SubViewAdmissions AnalyticsSubView = "admissions"
	SubViewEnrollment AnalyticsSubView = "enrollment"
)

var subViews = []AnalyticsSubView{SubViewFinance, SubViewMarketing, SubViewAdmissions, SubViewEnrollment}

var subViewLabels = map[AnalyticsSubView]string{
	SubViewFinance:    "Finance & Billing",
	SubViewMarketing:  "Marketing",
	SubViewAdmissions: "Admissions",
	SubViewEnrollment: "Enrollment",
}

// AnalyticsSubViews returns every sub-view in selector order.
func AnalyticsSubViews() []AnalyticsSubView {
	out := make([]AnalyticsSubView, len(subViews))
	copy(out, subViews)
	return out
}

// Valid reports whether s belongs to the closed set.
func (s AnalyticsSubView) Valid() bool {
	_, ok := subViewLabels[s]
	return ok
}

// Label returns the selector label for the sub-view.
func (s AnalyticsSubView) Label() string {
	return subViewLabels[s]
}

func (s AnalyticsSubView) String() string { return string(s) }

// ParseAnalyticsSubView converts a transport value into an AnalyticsSubView.
func ParseAnalyticsSubView(raw string) (AnalyticsSubView, error) {
	s := AnalyticsSubView(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", invalidSubView(AnalyticsSubView(raw))
	}
	return s, nil
}

// UiToggleState holds the two independent UI switches.
type UiToggleState struct {
	SidebarExpanded bool `json:"sidebar_expanded"`
	DarkTheme       bool `json:"dark_theme"`
}

// State is the complete navigation record owned by a Router.
type State struct {
	View      View             `json:"view"`
	Analytics AnalyticsSubView `json:"analytics"`
	UiToggleState
}

// InitialState is the state every new session starts from.
func InitialState() State {
	return State{
		View:          ViewOverview,
		Analytics:     SubViewFinance,
		UiToggleState: UiToggleState{SidebarExpanded: true, DarkTheme: false},
	}
}

// Validate checks that both tags are inside their closed sets.
func (s State) Validate() error {
	if !s.View.Valid() {
		return invalidView(s.View)
	}
	if !s.Analytics.Valid() {
		return invalidSubView(s.Analytics)
	}
	return nil
}
