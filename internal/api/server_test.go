package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/board"
	"github.com/dgnsrekt/compass_chart/internal/controller"
	"github.com/dgnsrekt/compass_chart/internal/events"
	"github.com/dgnsrekt/compass_chart/internal/kv"
	"github.com/dgnsrekt/compass_chart/internal/session"
)

func newTestService(t *testing.T) *controller.Service {
	t.Helper()
	m := session.NewManager(kv.NewMemory(), session.StandardKeys(""))
	return controller.NewService(board.New(m), events.NewBroker())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) board.State {
	t.Helper()
	var st board.State
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v (%s)", err, w.Body.String())
	}
	return st
}

func TestCreateChartStatusCodes(t *testing.T) {
	h := NewServer(newTestService(t), nil)

	w := do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}
	if st := decodeState(t, w); st.LoadedChart != "A" {
		t.Fatalf("LoadedChart = %q; want A", st.LoadedChart)
	}

	w = do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d; want %d", w.Code, http.StatusConflict)
	}
	w = do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank status = %d; want %d", w.Code, http.StatusBadRequest)
	}

	w = do(t, h, http.MethodGet, "/api/v1/charts", nil)
	if !strings.Contains(w.Body.String(), `"charts":["A"]`) {
		t.Fatalf("list body = %s", w.Body.String())
	}
}

func TestChartNotFound(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	if w := do(t, h, http.MethodPost, "/api/v1/charts/nope/load", nil); w.Code != http.StatusNotFound {
		t.Fatalf("load status = %d; want %d", w.Code, http.StatusNotFound)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/charts/nope?confirm=true", nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestDeleteChartNeedsConfirm(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})

	if w := do(t, h, http.MethodDelete, "/api/v1/charts/A", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed status = %d; want %d", w.Code, http.StatusBadRequest)
	}
	w := do(t, h, http.MethodDelete, "/api/v1/charts/A?confirm=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed status = %d; want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
	if st := decodeState(t, w); st.ChartLoaded {
		t.Fatalf("chart still loaded after delete")
	}
}

func TestPlaceEditAndTransform(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})
	do(t, h, http.MethodPost, "/api/v1/mode/new-point", nil)

	viewport := map[string]float64{"left": 0, "top": 0, "width": 200, "height": 100}
	w := do(t, h, http.MethodPost, "/api/v1/chart/click", map[string]any{"x": 100, "y": 50, "viewport": viewport})
	st := decodeState(t, w)
	if len(st.Points) != 1 || st.Selected != 0 || st.Points[0].Point.X != 0.5 {
		t.Fatalf("state after click = %+v", st)
	}

	do(t, h, http.MethodPost, "/api/v1/selection/edit", nil)
	do(t, h, http.MethodPost, "/api/v1/edit/image", map[string]string{"src": "https://example.com/a.png"})
	do(t, h, http.MethodPut, "/api/v1/edit", map[string]any{"name": "Origin"})
	w = do(t, h, http.MethodPost, "/api/v1/edit/save", nil)
	st = decodeState(t, w)
	if st.Mode != "idle" || st.Points[0].Point.Name != "Origin" || st.Points[0].Point.Image == nil {
		t.Fatalf("state after save = %+v", st)
	}

	w = do(t, h, http.MethodGet, "/api/v1/points/0/image-transform?container_width=200", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transform status = %d (%s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"css":"translateX(calc(0% + 0px)) translateY(calc(0% + 0px)) scale(1)"`) {
		t.Fatalf("transform body = %s", w.Body.String())
	}
}

func TestSaveEditEmptyNameIsBadRequest(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})
	do(t, h, http.MethodPost, "/api/v1/mode/new-point", nil)
	viewport := map[string]float64{"left": 0, "top": 0, "width": 10, "height": 10}
	do(t, h, http.MethodPost, "/api/v1/chart/click", map[string]any{"x": 1, "y": 1, "viewport": viewport})
	do(t, h, http.MethodPost, "/api/v1/selection/edit", nil)
	do(t, h, http.MethodPut, "/api/v1/edit", map[string]any{"name": ""})

	if w := do(t, h, http.MethodPost, "/api/v1/edit/save", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("save status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestNoOpsReturnState(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/points/4/select"},
		{http.MethodDelete, "/api/v1/points/4"},
		{http.MethodPost, "/api/v1/selection/move"},
		{http.MethodPost, "/api/v1/selection/move/cancel"},
		{http.MethodDelete, "/api/v1/selection?point=true"},
		{http.MethodPost, "/api/v1/edit/cancel"},
		{http.MethodDelete, "/api/v1/edit/image"},
		{http.MethodPost, "/api/v1/view/names"},
	} {
		if w := do(t, h, tc.method, tc.path, nil); w.Code != http.StatusOK {
			t.Fatalf("%s %s status = %d; want 200 (%s)", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
}

func TestPointerPreview(t *testing.T) {
	h := NewServer(newTestService(t), nil)
	viewport := map[string]float64{"left": 10, "top": 10, "width": 100, "height": 100}
	w := do(t, h, http.MethodPost, "/api/v1/pointer", map[string]any{"x": 5, "y": 50, "viewport": viewport})
	if !strings.Contains(w.Body.String(), `"visibility":"hidden"`) {
		t.Fatalf("pointer body = %s; want hidden preview", w.Body.String())
	}
}

func TestEventRoutesMounted(t *testing.T) {
	h := NewServer(newTestService(t), events.NewBroker())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code == http.StatusNotFound {
		t.Fatalf("websocket route not mounted")
	}
}

func TestDeepHealth(t *testing.T) {
	broker := events.NewBroker()
	defer broker.Close()
	svc := newTestService(t)
	h := NewServer(svc, broker)
	do(t, h, http.MethodPost, "/api/v1/charts", map[string]string{"name": "A"})

	w := do(t, h, http.MethodGet, "/api/v1/health/deep", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("deep health status = %d; want %d", w.Code, http.StatusOK)
	}
	var got struct {
		Charts        int    `json:"charts"`
		LoadedChart   string `json:"loaded_chart"`
		Mode          string `json:"mode"`
		EventsEnabled bool   `json:"events_enabled"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode deep health: %v", err)
	}
	if got.Charts != 1 || got.LoadedChart != "A" || got.Mode != "idle" || !got.EventsEnabled {
		t.Fatalf("deep health = %+v", got)
	}
}
