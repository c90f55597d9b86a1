package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/observability"
)

type fakePredictor struct {
	single churn.PredictionResult
	rows   []churn.BatchRow
	err    error
	calls  int
}

func (f *fakePredictor) PredictSingle(context.Context, churn.CustomerProfile) (churn.PredictionResult, error) {
	f.calls++
	return f.single, f.err
}

func (f *fakePredictor) PredictBatch(context.Context, churn.SelectedFile) ([]churn.BatchRow, error) {
	f.calls++
	return f.rows, f.err
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	return buf.String()
}

func TestInstrumentPredictorPassThrough(t *testing.T) {
	inner := &fakePredictor{
		single: churn.PredictionResult{Probability: 0.23, Prediction: 0, Status: "Stays"},
		rows:   []churn.BatchRow{{Probability: 0.9, Prediction: 1}},
	}
	m := observability.NewMetrics(true)
	p := instrumentPredictor(inner, m)

	res, err := p.PredictSingle(context.Background(), churn.DefaultProfile())
	if err != nil {
		t.Fatalf("PredictSingle: %v", err)
	}
	if res != inner.single {
		t.Fatalf("result = %+v, want %+v", res, inner.single)
	}
	rows, err := p.PredictBatch(context.Background(), churn.MemoryFile("c.csv", nil))
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if len(rows) != 1 || rows[0].Prediction != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}

	out := scrape(t, m)
	for _, want := range []string{
		`churnboard_backend_request_duration_seconds_count{op="predict",outcome="ok"} 1`,
		`churnboard_backend_request_duration_seconds_count{op="predict_batch",outcome="ok"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics missing %q:\n%s", want, out)
		}
	}
}

func TestInstrumentPredictorErrorPassThrough(t *testing.T) {
	boom := errors.New("boom")
	inner := &fakePredictor{err: boom}
	m := observability.NewMetrics(true)
	p := instrumentPredictor(inner, m)

	if _, err := p.PredictSingle(context.Background(), churn.DefaultProfile()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if out := scrape(t, m); !strings.Contains(out, `churnboard_backend_request_duration_seconds_count{op="predict",outcome="error"} 1`) {
		t.Fatalf("error outcome not recorded:\n%s", out)
	}
}

func TestInstrumentPredictorDisabledMetrics(t *testing.T) {
	inner := &fakePredictor{}
	if p := instrumentPredictor(inner, nil); p != inner {
		t.Fatalf("expected inner predictor when metrics are disabled")
	}
}
