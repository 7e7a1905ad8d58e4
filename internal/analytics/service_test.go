package analytics

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtca-portal/dtca-portal/internal/analytics/svg"
	"github.com/dtca-portal/dtca-portal/internal/dashboard"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
)

type countingSource struct {
	mu      sync.Mutex
	ds      *fixtures.Dataset
	version int64
	reads   int
}

func (c *countingSource) Dataset() *fixtures.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return c.ds
}

func (c *countingSource) Version() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *countingSource) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func newTestService(t *testing.T) (*Service, *countingSource, *Cache, *miniredis.Miniredis) {
	t.Helper()
	ds, err := fixtures.Default()
	require.NoError(t, err)
	source := &countingSource{ds: ds, version: 1}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	r := svg.Renderer{}
	svc := NewService(source, cache, Renderers{Donut: r, Ring: r, Bars: r})
	return svc, source, cache, mr
}

func TestServiceOverviewCaches(t *testing.T) {
	svc, source, _, mr := newTestService(t)
	ctx := context.Background()

	vm, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1247, vm.TotalStudents)
	require.Len(t, vm.Activities, 4)
	assert.Equal(t, "SJ", vm.Activities[0].Initials)
	assert.Equal(t, 100.0, vm.Enrollment[2].Width)

	reads := source.readCount()
	_, err = svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, reads, source.readCount(), "second call should be served from redis")
	assert.True(t, mr.Exists("dashboard:overview:1:1"))
}

func TestServiceFixtureVersionChangesKey(t *testing.T) {
	svc, source, _, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Students(ctx)
	require.NoError(t, err)
	source.mu.Lock()
	source.version = 2
	source.mu.Unlock()
	_, err = svc.Students(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("dashboard:students:1:1"))
	assert.True(t, mr.Exists("dashboard:students:2:1"))
}

func TestServiceBumpInvalidates(t *testing.T) {
	svc, _, cache, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Overview(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("dashboard:overview:1:2"))
}

func TestServiceStudents(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	vm, err := svc.Students(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, vm.Total)
	assert.Equal(t, 4, vm.Active)
	assert.Equal(t, 1, vm.Completed)
	assert.Equal(t, "LW", vm.Rows[4].Initials)
	assert.Equal(t, "status-completed", vm.Rows[4].StatusClass)
}

func TestServiceAnalyticsPanels(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	finance, err := svc.Analytics(ctx, dashboard.SubViewFinance)
	require.NoError(t, err)
	require.NotNil(t, finance.Finance)
	assert.Nil(t, finance.Marketing)
	assert.Contains(t, string(finance.Finance.PaymentStatusSVG), `stroke-dasharray="26 74" stroke-dashoffset="-68"`)
	shares := make([]float64, 0, len(finance.Finance.PaymentStatus))
	for _, item := range finance.Finance.PaymentStatus {
		shares = append(shares, item.Percent)
	}
	assert.Equal(t, []float64{68, 26, 6}, shares)

	marketing, err := svc.Analytics(ctx, dashboard.SubViewMarketing)
	require.NoError(t, err)
	require.NotNil(t, marketing.Marketing)
	widths := make([]float64, 0, len(marketing.Marketing.Funnel))
	for _, row := range marketing.Marketing.Funnel {
		widths = append(widths, row.Width)
	}
	assert.Equal(t, []float64{100, 100, 50, 20, 8}, widths)

	admissions, err := svc.Analytics(ctx, dashboard.SubViewAdmissions)
	require.NoError(t, err)
	require.NotNil(t, admissions.Admissions)
	assert.Len(t, admissions.Admissions.Timeline, 4)

	enrollment, err := svc.Analytics(ctx, dashboard.SubViewEnrollment)
	require.NoError(t, err)
	require.NotNil(t, enrollment.Enrollment)
	classes := make([]string, 0, 4)
	for _, row := range enrollment.Enrollment.Completions {
		classes = append(classes, row.ColorClass)
	}
	assert.Equal(t, []string{"near-target", "near-target", "on-target", "behind-target"}, classes)
	assert.Equal(t, 100.0, enrollment.Enrollment.Completions[2].Width)
	require.Len(t, enrollment.Enrollment.Cohorts, 3)
	assert.True(t, strings.HasPrefix(string(enrollment.Enrollment.Cohorts[0].SVG), "<svg"))
	assert.Contains(t, string(enrollment.Enrollment.CompletionsSVG), "bar-actual on-target")
}

func TestServiceAnalyticsRejectsUnknownSubView(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Analytics(context.Background(), dashboard.AnalyticsSubView("payroll"))
	assert.ErrorIs(t, err, dashboard.ErrInvalidArgument)
	_, err = svc.ExportSections(dashboard.AnalyticsSubView("payroll"))
	assert.ErrorIs(t, err, dashboard.ErrInvalidArgument)
}

func TestServicePageBuildsActiveViewOnly(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	state := dashboard.InitialState()
	state.View = dashboard.ViewAnalytics
	state.Analytics = dashboard.SubViewEnrollment

	page, err := svc.Page(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, page.Overview)
	assert.Nil(t, page.Students)
	require.NotNil(t, page.Analytics)
	assert.Equal(t, dashboard.SubViewEnrollment, page.Analytics.SubView)
	assert.Equal(t, "Analytics", page.Heading)
	require.Len(t, page.Nav, 7)
	assert.True(t, page.Nav[3].Active)
	require.Len(t, page.SubViews, 4)
	assert.True(t, page.SubViews[3].Active)

	state.View = dashboard.ViewCalendar
	page, err = svc.Page(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, page.Overview)
	assert.Nil(t, page.Analytics)
	assert.Equal(t, "Calendar", page.Heading)
}

func TestServiceWithoutCache(t *testing.T) {
	ds, err := fixtures.Default()
	require.NoError(t, err)
	svc := NewService(fixtures.NewStaticStore(ds), nil, Renderers{})
	vm, err := svc.Analytics(context.Background(), dashboard.SubViewFinance)
	require.NoError(t, err)
	require.NotNil(t, vm.Finance)
	assert.Empty(t, vm.Finance.PaymentStatusSVG)
}

func TestServiceConcurrentLoads(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vm, err := svc.Overview(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 1247, vm.TotalStudents)
		}()
	}
	wg.Wait()
}

func TestExportSections(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	sections, err := svc.ExportSections(dashboard.SubViewEnrollment)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "completions", sections[1].Name)
	assert.Len(t, svc.StudentRecords(), 5)
}

func TestServiceSharedBuildSurvivesCallerCancellation(t *testing.T) {
	svc, _, _, mr := newTestService(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var builds int
	var mu sync.Mutex
	build := func(*fixtures.Dataset) (any, error) {
		mu.Lock()
		builds++
		mu.Unlock()
		once.Do(func() { close(started) })
		<-release
		return map[string]int{"total": 42}, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var dest map[string]int
		firstErr <- svc.load(firstCtx, "slow", &dest, build)
	}()
	<-started

	secondErr := make(chan error, 1)
	var second map[string]int
	go func() {
		secondErr <- svc.load(context.Background(), "slow", &second, build)
	}()
	// let the second caller join the in-flight build
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, 42, second["total"])

	mu.Lock()
	assert.Equal(t, 1, builds)
	mu.Unlock()
	assert.True(t, mr.Exists("dashboard:slow:1:1"), "shared build is cached after the first caller left")
}

func TestServicePageRendersChartsForEverySubView(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	for _, sub := range dashboard.AnalyticsSubViews() {
		state := dashboard.InitialState()
		state.View = dashboard.ViewAnalytics
		state.Analytics = sub

		page, err := svc.Page(context.Background(), state)
		require.NoError(t, err, sub)
		require.NotNil(t, page.Analytics, sub)
		switch sub {
		case dashboard.SubViewFinance:
			assert.Contains(t, string(page.Analytics.Finance.PaymentStatusSVG), "<svg")
		case dashboard.SubViewMarketing:
			assert.Contains(t, string(page.Analytics.Marketing.TrafficSVG), "<svg")
		case dashboard.SubViewAdmissions:
			assert.NotEmpty(t, page.Analytics.Admissions.Timeline)
		case dashboard.SubViewEnrollment:
			assert.Contains(t, string(page.Analytics.Enrollment.CompletionsSVG), "<svg")
			assert.Contains(t, string(page.Analytics.Enrollment.Cohorts[0].SVG), "<svg")
		}
	}
}
