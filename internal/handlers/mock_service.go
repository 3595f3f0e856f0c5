package handlers

import (
	"context"
	"time"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockTrends struct {
	res        service.TrendResult
	err        error
	calls      int
	lastWindow service.Window
}

func (m *mockTrends) Build(ctx context.Context, w service.Window) (service.TrendResult, error) {
	m.calls++
	m.lastWindow = w
	return m.res, m.err
}

type mockKPI struct {
	res     service.KPIResult
	err     error
	calls   int
	lastReq service.KPIRequest
}

func (m *mockKPI) Panels(ctx context.Context, r service.KPIRequest) (service.KPIResult, error) {
	m.calls++
	m.lastReq = r
	return m.res, m.err
}

type mockReport struct {
	res        service.ReportResult
	err        error
	calls      int
	lastFilter service.ReportFilter
}

func (m *mockReport) Readings(ctx context.Context, f service.ReportFilter) (service.ReportResult, error) {
	m.calls++
	m.lastFilter = f
	return m.res, m.err
}

// ---- Shared Test Helpers ----

// fixedNow is the clock every handler test runs on.
var fixedNow = time.Date(2024, 2, 20, 14, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Hour:               6,
		TrendLookbackDays:  19,
		KPILookbackDays:    15,
		ReportLookbackDays: 1,
		WSDefaultInterval:  time.Second,
		WSMaxInterval:      10 * time.Second,
		Now:                func() time.Time { return fixedNow },
	}
}

func newTestService(tr *mockTrends, kpi *mockKPI, rep *mockReport) *service.Service {
	s := &service.Service{Catalog: catalog.Default()}
	if tr != nil {
		s.Trends = tr
	}
	if kpi != nil {
		s.KPI = kpi
	}
	if rep != nil {
		s.Report = rep
	}
	return s
}

func newTestRouter(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}
