package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	trends "furnace_trends"
	"furnace_trends/internal/models"
	"furnace_trends/internal/service"
)

func day(s string) time.Time {
	t, _ := time.Parse(layoutDate, s)
	return t
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestTrendHandler_Success(t *testing.T) {
	tr := &mockTrends{res: service.TrendResult{
		RunID: "run-1",
		Window: service.Window{
			Start: day("2024-02-01"), End: day("2024-02-02"), Hour: 6, ParameterIDs: []int{0, 2},
		},
		Series: map[string]models.Series{
			"Set V": {ParameterID: 0, Parameter: "Set V", Points: []models.Point{
				{Timestamp: time.Date(2024, 2, 1, 6, 5, 0, 0, time.UTC), Value: 10.6},
				{Timestamp: time.Date(2024, 2, 2, 6, 0, 0, 0, time.UTC), Value: 11},
			}},
		},
		Dropped: 1,
	}}
	r := newTestRouter(newTestService(tr, nil, nil), testOptions())

	w := get(t, r, "/api/v1/trend?start=2024-02-01&end=2024-02-02&hour=6&param=Set%20V&param=avg-v")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if tr.lastWindow.Hour != 6 || !tr.lastWindow.Start.Equal(day("2024-02-01")) || !tr.lastWindow.End.Equal(day("2024-02-02")) {
		t.Fatalf("unexpected window: %+v", tr.lastWindow)
	}
	if ids := tr.lastWindow.ParameterIDs; len(ids) != 2 || ids[0] != 0 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	var out trends.TrendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.RunID != "run-1" || out.Dropped != 1 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.Window.Start != "2024-02-01" || out.Window.End != "2024-02-02" || len(out.Window.Parameters) != 2 || out.Window.Parameters[1] != "Avg. V" {
		t.Fatalf("unexpected window view: %+v", out.Window)
	}
	pts := out.Series["Set V"]
	if len(pts) != 2 || pts[0].Value != 10.6 || pts[1].Value != 11 {
		t.Fatalf("unexpected series: %+v", out.Series)
	}
}

func TestTrendHandler_Defaults(t *testing.T) {
	tr := &mockTrends{}
	r := newTestRouter(newTestService(tr, nil, nil), testOptions())

	w := get(t, r, "/api/v1/trend")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	got := tr.lastWindow
	if !got.End.Equal(day("2024-02-20")) || !got.Start.Equal(day("2024-02-01")) {
		t.Fatalf("default range = %v..%v; want 2024-02-01..2024-02-20", got.Start, got.End)
	}
	if got.Hour != 6 || len(got.ParameterIDs) != 1 || got.ParameterIDs[0] != 0 {
		t.Fatalf("defaults: %+v", got)
	}

	opts := testOptions()
	opts.TrendStart = day("2024-01-10")
	opts.TrendEnd = day("2024-01-20")
	opts.TrendParams = []string{"Bath. T"}
	r = newTestRouter(newTestService(tr, nil, nil), opts)
	if w := get(t, r, "/api/v1/trend"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !tr.lastWindow.Start.Equal(opts.TrendStart) || !tr.lastWindow.End.Equal(opts.TrendEnd) || tr.lastWindow.ParameterIDs[0] != 9 {
		t.Fatalf("configured defaults not applied: %+v", tr.lastWindow)
	}
}

func TestTrendHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		svcErr  error
		code    int
		called  bool
		errBody string
	}{
		{name: "bad start", query: "start=yesterday", code: http.StatusBadRequest},
		{name: "bad hour", query: "hour=six", code: http.StatusBadRequest},
		{name: "unknown param", query: "param=Voltage", code: http.StatusBadRequest},
		{name: "unknown param id", query: "param=99", code: http.StatusBadRequest},
		{
			name: "invalid range from service", query: "start=2024-02-03&end=2024-02-01",
			svcErr: fmt.Errorf("%w: 2024-02-03 > 2024-02-01", service.ErrInvalidRange),
			code:   http.StatusBadRequest, called: true,
		},
		{
			name: "hour out of range", query: "hour=25",
			svcErr: service.ErrInvalidHour, code: http.StatusBadRequest, called: true,
		},
		{
			name: "source down", svcErr: fmt.Errorf("%w: dial tcp", service.ErrDataSourceUnavailable),
			code: http.StatusServiceUnavailable, called: true, errBody: errSourceUnavailable,
		},
		{
			name: "catalog drift", svcErr: service.ErrUnknownParameter,
			code: http.StatusInternalServerError, called: true, errBody: errCatalogDrift,
		},
		{
			name: "unexpected", svcErr: errors.New("boom"),
			code: http.StatusInternalServerError, called: true, errBody: errInternal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &mockTrends{err: tc.svcErr}
			r := newTestRouter(newTestService(tr, nil, nil), testOptions())

			w := get(t, r, "/api/v1/trend?"+tc.query)
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.code, w.Body.String())
			}
			if (tr.calls > 0) != tc.called {
				t.Fatalf("service called=%v, want %v", tr.calls > 0, tc.called)
			}
			var out trends.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Error == "" {
				t.Fatalf("expected error body, got %s", w.Body.String())
			}
			if tc.errBody != "" && out.Error != tc.errBody {
				t.Fatalf("error=%q, want %q", out.Error, tc.errBody)
			}
		})
	}
}
