package observability

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ObservePrediction("single", "succeeded")
	m.SetSessions(3)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, nil)
	if rec.Code != 503 {
		t.Fatalf("code=%d", rec.Code)
	}
	if NewMetrics(false) != nil {
		t.Fatalf("expected nil when disabled")
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics(true)
	m.ObserveAPI("POST", "/api/predict", 202, 30*time.Millisecond)
	m.ObservePrediction("batch", "failed")
	m.ObservePrediction("batch", "failed")
	m.ObserveBackend("predict_batch", errors.New("x"), 2*time.Second)
	m.SetSessions(4)
	m.APIInflightInc()
	m.APIInflightDec()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`churnboard_http_requests_total{method="POST",route="/api/predict",status="202"} 1`,
		`churnboard_http_request_duration_seconds_bucket{method="POST",route="/api/predict",le="0.05"} 1`,
		`churnboard_predictions_total{surface="batch",outcome="failed"} 2`,
		`churnboard_backend_request_duration_seconds_count{op="predict_batch",outcome="error"} 1`,
		"churnboard_sessions 4",
		"churnboard_http_inflight_requests 0",
		"# TYPE churnboard_realtime_dropped_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("got=%s", got)
	}
	if withLe("", "+Inf") != `{le="+Inf"}` {
		t.Fatalf("withLe")
	}
}
