package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	trends "furnace_trends"
)

func TestParametersHandler(t *testing.T) {
	r := newTestRouter(newTestService(nil, nil, nil), testOptions())

	w := get(t, r, "/api/v1/parameters")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var out trends.ParametersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 15 || len(out.Parameters) != 15 {
		t.Fatalf("count = %d; want 15", out.Count)
	}
	if p := out.Parameters[2]; p.ID != 2 || p.Name != "Avg. V" || p.Slug != "avg-v" {
		t.Fatalf("unexpected entry: %+v", p)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(newTestService(nil, nil, nil), testOptions())
	w := get(t, r, "/health")
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}
