package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	trends "furnace_trends"
	"furnace_trends/internal/models"
	"furnace_trends/internal/service"
)

func TestKPIHandler(t *testing.T) {
	lo, hi := 960.0, 970.0
	kpi := &mockKPI{res: service.KPIResult{
		RunID:  "run-k",
		Window: service.Window{Start: day("2024-02-05"), End: day("2024-02-20"), Hour: 6},
		Panels: []models.Panel{
			{ParameterID: 0, Parameter: "Set V", Slug: "set-v", Points: []models.Point{}},
			{ParameterID: 9, Parameter: "Bath. T", Slug: "bath-t", HasData: true, Min: &lo, Max: &hi, YRange: &[2]float64{950, 980}},
		},
	}}
	r := newTestRouter(newTestService(nil, kpi, nil), testOptions())

	w := get(t, r, "/api/v1/kpi")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if !kpi.lastReq.Start.Equal(day("2024-02-05")) || !kpi.lastReq.End.Equal(day("2024-02-20")) || kpi.lastReq.Hour != 6 {
		t.Fatalf("default request = %+v", kpi.lastReq)
	}
	var out trends.KPIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.RunID != "run-k" || len(out.Panels) != 2 || out.Window.Start != "2024-02-05" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if p := out.Panels[1]; !p.HasData || p.YRange == nil || p.YRange[1] != 980 {
		t.Fatalf("unexpected panel: %+v", p)
	}
	if p := out.Panels[0]; p.HasData || p.YRange != nil {
		t.Fatalf("empty panel should carry no range: %+v", p)
	}

	if w := get(t, r, "/api/v1/kpi?start=2024-02-01&end=2024-02-02&hour=7"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if kpi.lastReq.Hour != 7 || !kpi.lastReq.Start.Equal(day("2024-02-01")) {
		t.Fatalf("explicit request = %+v", kpi.lastReq)
	}

	calls := kpi.calls
	if w := get(t, r, "/api/v1/kpi?end=02/02/2024"); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	if kpi.calls != calls {
		t.Fatalf("service called on a malformed query")
	}

	kpi.err = service.ErrDataSourceUnavailable
	if w := get(t, r, "/api/v1/kpi"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", w.Code)
	}
}
