package fixtures

// MetricRecord is a single displayable statistic. Percent may exceed 100 for
// over-target metrics.
type MetricRecord struct {
	Label   string  `yaml:"label" json:"label" validate:"required"`
	Value   float64 `yaml:"value" json:"value"`
	Display string  `yaml:"display,omitempty" json:"display,omitempty"`
	Percent float64 `yaml:"percent" json:"percent" validate:"gte=0"`
	Target  float64 `yaml:"target,omitempty" json:"target,omitempty" validate:"gte=0"`
	Color   string  `yaml:"color,omitempty" json:"color,omitempty"`
}

// Series is an ordered sequence of metric records in display order.
type Series []MetricRecord

// Percents returns the percent column of the series.
func (s Series) Percents() []float64 {
	out := make([]float64, 0, len(s))
	for _, rec := range s {
		out = append(out, rec.Percent)
	}
	return out
}

// StatCard is a headline KPI tile.
type StatCard struct {
	Label  string `yaml:"label" json:"label" validate:"required"`
	Value  string `yaml:"value" json:"value" validate:"required"`
	Change string `yaml:"change,omitempty" json:"change,omitempty"`
	Tone   string `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Action string `yaml:"action" json:"action" validate:"required"`
	User   string `yaml:"user" json:"user" validate:"required"`
	Time   string `yaml:"time" json:"time"`
}

// Campaign is a marketing campaign performance row.
type Campaign struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	CTR   string `yaml:"ctr" json:"ctr"`
	Spend string `yaml:"spend" json:"spend"`
	ROI   string `yaml:"roi" json:"roi"`
}

// Student statuses.
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

// StudentRecord is a row of the student directory.
type StudentRecord struct {
	Name     string  `yaml:"name" json:"name" validate:"required"`
	Email    string  `yaml:"email" json:"email" validate:"required,email"`
	Course   string  `yaml:"course" json:"course" validate:"required"`
	Progress float64 `yaml:"progress" json:"progress" validate:"gte=0,lte=100"`
	Status   string  `yaml:"status" json:"status" validate:"oneof=Active Completed"`
}

// Overview feeds the landing view.
type Overview struct {
	Stats         []StatCard `yaml:"stats" json:"stats" validate:"dive"`
	Enrollment    Series     `yaml:"enrollment" json:"enrollment" validate:"dive"`
	Activities    []Activity `yaml:"activities" json:"activities" validate:"dive"`
	TotalStudents int        `yaml:"total_students" json:"total_students" validate:"gte=0"`
}

// Finance feeds the finance and billing analytics.
type Finance struct {
	KPIs           []StatCard `yaml:"kpis" json:"kpis" validate:"dive"`
	Revenue        Series     `yaml:"revenue" json:"revenue" validate:"dive"`
	PaymentStatus  Series     `yaml:"payment_status" json:"payment_status" validate:"dive"`
	PaymentMethods Series     `yaml:"payment_methods" json:"payment_methods" validate:"dive"`
}

// Marketing feeds the marketing analytics.
type Marketing struct {
	KPIs      []StatCard `yaml:"kpis" json:"kpis" validate:"dive"`
	Funnel    Series     `yaml:"funnel" json:"funnel" validate:"dive"`
	Traffic   Series     `yaml:"traffic" json:"traffic" validate:"dive"`
	Campaigns []Campaign `yaml:"campaigns" json:"campaigns" validate:"dive"`
}

// Admissions feeds the admissions analytics.
type Admissions struct {
	KPIs     []StatCard `yaml:"kpis" json:"kpis" validate:"dive"`
	Pipeline Series     `yaml:"pipeline" json:"pipeline" validate:"dive"`
	Sources  Series     `yaml:"sources" json:"sources" validate:"dive"`
	Timeline Series     `yaml:"timeline" json:"timeline" validate:"dive"`
}

// Enrollment feeds the enrollment analytics.
type Enrollment struct {
	KPIs        []StatCard `yaml:"kpis" json:"kpis" validate:"dive"`
	Cohorts     Series     `yaml:"cohorts" json:"cohorts" validate:"dive"`
	Completions Series     `yaml:"completions" json:"completions" validate:"dive"`
	Outcomes    []StatCard `yaml:"outcomes" json:"outcomes" validate:"dive"`
}

// Dataset bundles every fixture the dashboard renders.
type Dataset struct {
	Overview   Overview        `yaml:"overview" json:"overview"`
	Students   []StudentRecord `yaml:"students" json:"students" validate:"dive"`
	Finance    Finance         `yaml:"finance" json:"finance"`
	Marketing  Marketing       `yaml:"marketing" json:"marketing"`
	Admissions Admissions      `yaml:"admissions" json:"admissions"`
	Enrollment Enrollment      `yaml:"enrollment" json:"enrollment"`
}
