package app

import (
	"context"
	"time"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/dashboard"
	"github.com/yungbote/churnboard/internal/observability"
)

type instrumentedPredictor struct {
	inner   dashboard.Predictor
	metrics *observability.Metrics
}

func instrumentPredictor(inner dashboard.Predictor, m *observability.Metrics) dashboard.Predictor {
	if m == nil {
		return inner
	}
	return &instrumentedPredictor{inner: inner, metrics: m}
}

func (p *instrumentedPredictor) PredictSingle(ctx context.Context, profile churn.CustomerProfile) (churn.PredictionResult, error) {
	start := time.Now()
	out, err := p.inner.PredictSingle(ctx, profile)
	p.metrics.ObserveBackend("predict", err, time.Since(start))
	return out, err
}

func (p *instrumentedPredictor) PredictBatch(ctx context.Context, file churn.SelectedFile) ([]churn.BatchRow, error) {
	start := time.Now()
	out, err := p.inner.PredictBatch(ctx, file)
	p.metrics.ObserveBackend("predict_batch", err, time.Since(start))
	return out, err
}
