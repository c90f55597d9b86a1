package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/platform/logger"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	PredictPath = "/predict"
	BatchPath   = "/predict_batch"
	HealthPath  = "/health"

	// BatchFileField is the multipart field the batch endpoint reads.
	BatchFileField = "file"

	maxSingleResponse = 1 << 20
	maxBatchResponse  = 64 << 20
)

type Options struct {
	BaseURL string

	// Timeout bounds each attempt.
	Timeout time.Duration
	// MaxRetries applies to network failures only; 0 means a single attempt.
	MaxRetries   int
	RetryBackoff time.Duration

	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client calls the prediction server. It holds no per-request state and is
// safe for concurrent use; calls are neither cached nor deduplicated.
type Client struct {
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration

	httpClient *http.Client
	log        *logger.Logger
	tracer     trace.Tracer
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL:      baseURL,
		timeout:      timeout,
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		httpClient:   hc,
		log:          log.With("component", "PredictClient"),
		tracer:       otel.Tracer("github.com/yungbote/churnboard/internal/predict"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) PredictSingle(ctx context.Context, profile churn.CustomerProfile) (churn.PredictionResult, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return churn.PredictionResult{}, fmt.Errorf("encode profile: %w", err)
	}

	var out churn.PredictionResult
	err = c.do(ctx, call{
		op:          "predict",
		method:      http.MethodPost,
		path:        PredictPath,
		contentType: "application/json",
		body:        body,
		maxResponse: maxSingleResponse,
		onStatus:    singleError("predict"),
	}, &out)
	if err != nil {
		return churn.PredictionResult{}, err
	}
	return out, nil
}

func (c *Client) PredictBatch(ctx context.Context, file churn.SelectedFile) ([]churn.BatchRow, error) {
	if file == nil {
		return nil, errors.New("batch: no file selected")
	}
	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, err
	}

	var rows []churn.BatchRow
	err = c.do(ctx, call{
		op:          "batch",
		method:      http.MethodPost,
		path:        BatchPath,
		contentType: contentType,
		body:        body,
		maxResponse: maxBatchResponse,
		onStatus:    batchError,
		attrs:       []attribute.KeyValue{attribute.String("churn.file", file.Name())},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []churn.BatchRow{}
	}
	return rows, nil
}

type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (s HealthStatus) Ready() bool { return s.ModelLoaded && s.Status == "ok" }

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, call{
		op:          "health",
		method:      http.MethodGet,
		path:        HealthPath,
		maxResponse: maxSingleResponse,
		onStatus:    singleError("health"),
	}, &out)
	return out, err
}

func encodeMultipart(file churn.SelectedFile) ([]byte, string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name(), err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(BatchFileField, file.Name())
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", file.Name(), err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// ---------------- HTTP helpers ----------------

type call struct {
	op          string
	method      string
	path        string
	contentType string
	body        []byte
	maxResponse int64
	onStatus    func(status int, raw []byte) error
	attrs       []attribute.KeyValue
}

func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "predict."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(cl.attrs,
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.path),
		)...),
	)
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.Warn("prediction call failed", "op", cl.op, "error", err, "duration_ms", time.Since(start).Milliseconds())
		} else {
			c.log.Debug("prediction call ok", "op", cl.op, "duration_ms", time.Since(start).Milliseconds())
		}
		span.End()
	}()

	backoff := c.retryBackoff
	for attempt := 0; ; attempt++ {
		status, raw, netErr := c.attempt(ctx, cl)
		if netErr == nil {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status < 200 || status >= 300 {
				return cl.onStatus(status, raw)
			}
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return &ServerError{Op: cl.op, StatusCode: status, Message: "malformed response: " + err.Error()}
			}
			return nil
		}

		if attempt >= c.maxRetries || ctx.Err() != nil {
			return &NetworkError{Op: cl.op, Err: netErr}
		}
		c.log.Debug("retrying prediction call", "op", cl.op, "attempt", attempt+1, "error", netErr)
		select {
		case <-ctx.Done():
			return &NetworkError{Op: cl.op, Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// attempt performs one request under its own timeout. A non-nil error means
// no response was received.
func (c *Client) attempt(ctx context.Context, cl call) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return 0, nil, err
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, cl.maxResponse))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}
