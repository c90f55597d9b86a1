package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/churnboard/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. All methods are safe on
// a nil receiver so callers need not check whether metrics are enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	predictions     *CounterVec
	backendLatency  *HistogramVec
	sessions        *Gauge
	realtimeDropped *Counter

	redisUp   *Gauge
	redisPing *Gauge
}

// NewMetrics returns nil when disabled.
func NewMetrics(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	return &Metrics{
		apiRequests: NewCounterVec("churnboard_http_requests_total", "HTTP requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"churnboard_http_request_duration_seconds",
			"HTTP request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		),
		apiInflight: NewGauge("churnboard_http_inflight_requests", "In-flight HTTP requests."),
		predictions: NewCounterVec("churnboard_predictions_total", "Resolved prediction requests by surface/outcome.", []string{"surface", "outcome"}),
		backendLatency: NewHistogramVec(
			"churnboard_backend_request_duration_seconds",
			"Prediction backend call latency by operation/outcome.",
			[]string{"op", "outcome"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		),
		sessions:        NewGauge("churnboard_sessions", "Live dashboard sessions."),
		realtimeDropped: NewCounter("churnboard_realtime_dropped_total", "Lifecycle updates dropped because the publish queue was full."),
		redisUp:         NewGauge("churnboard_redis_up", "Whether the realtime redis answered the last ping."),
		redisPing:       NewGauge("churnboard_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.predictions, m.backendLatency, m.sessions, m.realtimeDropped,
		m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ObservePrediction counts one resolved lifecycle transition. outcome is
// "succeeded" or "failed".
func (m *Metrics) ObservePrediction(surface, outcome string) {
	if m == nil {
		return
	}
	m.predictions.Inc(surface, outcome)
}

func (m *Metrics) ObserveBackend(op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendLatency.Observe(dur.Seconds(), op, outcome)
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func (m *Metrics) IncRealtimeDropped() {
	if m == nil {
		return
	}
	m.realtimeDropped.Add(1)
}

// RunRedisCollector pings rdb every interval until ctx is done.
func (m *Metrics) RunRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, interval time.Duration) error {
	if m == nil || rdb == nil {
		return nil
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := rdb.Ping(ctx).Err(); err != nil {
				m.redisUp.Set(0)
				if log != nil && ctx.Err() == nil {
					log.Warn("metrics: redis ping failed", "error", err)
				}
				continue
			}
			m.redisUp.Set(1)
			m.redisPing.Set(time.Since(start).Seconds())
		}
	}
}
