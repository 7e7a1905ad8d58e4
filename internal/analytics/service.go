package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dtca-portal/dtca-portal/internal/analytics/export"
	"github.com/dtca-portal/dtca-portal/internal/analytics/ui"
	"github.com/dtca-portal/dtca-portal/internal/dashboard"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
)

// FixtureSource supplies the dataset and a version that changes on reload.
type FixtureSource interface {
	Dataset() *fixtures.Dataset
	Version() int64
}

// Renderers groups the chart renderers used by the panels.
type Renderers struct {
	Donut ui.DonutRenderer
	Ring  ui.RingRenderer
	Bars  ui.BarRenderer
}

// Service builds dashboard view models from fixtures and caches them per
// fixture version.
type Service struct {
	source    FixtureSource
	cache     *Cache
	renderers Renderers
	group     singleflight.Group
}

// NewService wires a fixture source with a Cache helper. A nil cache builds
// every panel on demand.
func NewService(source FixtureSource, cache *Cache, renderers Renderers) *Service {
	return &Service{source: source, cache: cache, renderers: renderers}
}

// Page assembles the full page model for a dashboard state. Only the active
// view's panel is built.
func (s *Service) Page(ctx context.Context, state dashboard.State) (ui.PageViewModel, error) {
	page := ui.PageViewModel{
		State:    state,
		Nav:      ui.NavItems(state.View),
		SubViews: ui.SubViewOptions(state.Analytics),
		Heading:  state.View.Label(),
	}
	switch state.View {
	case dashboard.ViewOverview:
		vm, err := s.Overview(ctx)
		if err != nil {
			return page, err
		}
		page.Overview = &vm
	case dashboard.ViewStudents:
		vm, err := s.Students(ctx)
		if err != nil {
			return page, err
		}
		page.Students = &vm
	case dashboard.ViewAnalytics:
		vm, err := s.Analytics(ctx, state.Analytics)
		if err != nil {
			return page, err
		}
		page.Analytics = &vm
	}
	return page, nil
}

// Overview returns the landing view model.
func (s *Service) Overview(ctx context.Context) (ui.OverviewViewModel, error) {
	var vm ui.OverviewViewModel
	err := s.load(ctx, "overview", &vm, func(ds *fixtures.Dataset) (any, error) {
		return buildOverview(ds.Overview), nil
	})
	return vm, err
}

// Students returns the student directory view model.
func (s *Service) Students(ctx context.Context) (ui.StudentsViewModel, error) {
	var vm ui.StudentsViewModel
	err := s.load(ctx, "students", &vm, func(ds *fixtures.Dataset) (any, error) {
		return buildStudents(ds.Students), nil
	})
	return vm, err
}

// Analytics returns the panel for one analytics sub-view.
func (s *Service) Analytics(ctx context.Context, sub dashboard.AnalyticsSubView) (ui.AnalyticsViewModel, error) {
	if !sub.Valid() {
		return ui.AnalyticsViewModel{}, fmt.Errorf("%w: analytics sub-view %q", dashboard.ErrInvalidArgument, sub)
	}
	var vm ui.AnalyticsViewModel
	err := s.load(ctx, "analytics:"+sub.String(), &vm, func(ds *fixtures.Dataset) (any, error) {
		out := ui.AnalyticsViewModel{SubView: sub}
		var err error
		switch sub {
		case dashboard.SubViewFinance:
			var panel ui.FinanceViewModel
			panel, err = buildFinance(ds.Finance, s.renderers)
			out.Finance = &panel
		case dashboard.SubViewMarketing:
			var panel ui.MarketingViewModel
			panel, err = buildMarketing(ds.Marketing, s.renderers)
			out.Marketing = &panel
		case dashboard.SubViewAdmissions:
			panel := buildAdmissions(ds.Admissions)
			out.Admissions = &panel
		case dashboard.SubViewEnrollment:
			var panel ui.EnrollmentViewModel
			panel, err = buildEnrollment(ds.Enrollment, s.renderers)
			out.Enrollment = &panel
		}
		return out, err
	})
	return vm, err
}

// StudentRecords returns the raw student rows for export.
func (s *Service) StudentRecords() []fixtures.StudentRecord {
	return s.source.Dataset().Students
}

// ExportSections returns the series behind an analytics sub-view for CSV
// export.
func (s *Service) ExportSections(sub dashboard.AnalyticsSubView) ([]export.Section, error) {
	ds := s.source.Dataset()
	switch sub {
	case dashboard.SubViewFinance:
		return []export.Section{
			{Name: "revenue", Records: ds.Finance.Revenue},
			{Name: "payment_status", Records: ds.Finance.PaymentStatus},
			{Name: "payment_methods", Records: ds.Finance.PaymentMethods},
		}, nil
	case dashboard.SubViewMarketing:
		return []export.Section{
			{Name: "funnel", Records: ds.Marketing.Funnel},
			{Name: "traffic", Records: ds.Marketing.Traffic},
		}, nil
	case dashboard.SubViewAdmissions:
		return []export.Section{
			{Name: "pipeline", Records: ds.Admissions.Pipeline},
			{Name: "sources", Records: ds.Admissions.Sources},
			{Name: "timeline", Records: ds.Admissions.Timeline},
		}, nil
	case dashboard.SubViewEnrollment:
		return []export.Section{
			{Name: "cohorts", Records: ds.Enrollment.Cohorts},
			{Name: "completions", Records: ds.Enrollment.Completions},
		}, nil
	default:
		return nil, fmt.Errorf("%w: analytics sub-view %q", dashboard.ErrInvalidArgument, sub)
	}
}

// load resolves a panel through the Redis cache. Concurrent misses for the
// same key share one build, which outlives the caller that started it; each
// caller still gives up when its own ctx is done.
func (s *Service) load(ctx context.Context, panel string, dest any, build func(*fixtures.Dataset) (any, error)) error {
	key, err := s.cache.Key(ctx, panel, s.source.Version())
	if err != nil {
		return err
	}
	buildCtx := context.WithoutCancel(ctx)
	resultChan := s.group.DoChan(key, func() (any, error) {
		return s.cache.Fetch(buildCtx, key, func() (any, error) {
			return build(s.source.Dataset())
		})
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return fmt.Errorf("analytics: build %s: %w", panel, res.Err)
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
