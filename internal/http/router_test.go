package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/dashboard"
	"github.com/yungbote/churnboard/internal/gauge"
	httpH "github.com/yungbote/churnboard/internal/http/handlers"
	httpMW "github.com/yungbote/churnboard/internal/http/middleware"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/predict"
	"github.com/yungbote/churnboard/internal/predict/mock"
	"github.com/yungbote/churnboard/internal/realtime"
)

type testEnv struct {
	srv     *httptest.Server
	backend *mock.Backend
	reg     *dashboard.Registry
	hub     *realtime.Hub
	client  *nethttp.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	backend := mock.New()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)
	pc, err := predict.New(predict.Options{BaseURL: backendSrv.URL, Timeout: 2 * time.Second, Logger: log})
	if err != nil {
		t.Fatalf("predict.New: %v", err)
	}

	hub := realtime.NewHub(log)
	reg := dashboard.NewRegistry(pc, log, time.Hour, dashboard.Options{OnChange: func(ch dashboard.Change) {
		msg := realtime.Message{Channel: ch.Session, Event: realtime.EventSingle, Data: ch.Single}
		if ch.Surface == dashboard.SurfaceBatch {
			msg = realtime.Message{Channel: ch.Session, Event: realtime.EventBatch, Data: ch.Batch}
		}
		hub.Broadcast(msg)
	}})
	g, err := gauge.NewRenderer("")
	if err != nil {
		t.Fatalf("gauge: %v", err)
	}

	engine := NewRouter(RouterConfig{
		Log:             log,
		ServiceName:     "churnboard-test",
		Sessions:        reg,
		SessionOptions:  httpMW.SessionOptions{TTL: time.Hour},
		PageHandler:     httpH.NewPageHandler(),
		ProfileHandler:  httpH.NewProfileHandler(),
		PredictHandler:  httpH.NewPredictHandler(log, g),
		BatchHandler:    httpH.NewBatchHandler(log, 1<<20),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub),
		HealthHandler:   httpH.NewHealthHandler(pc),
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, backend: backend, reg: reg, hub: hub, client: &nethttp.Client{Jar: newJar()}}
}

func newJar() nethttp.CookieJar {
	jar, _ := cookiejar.New(nil)
	return jar
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, _ := nethttp.NewRequest(method, e.srv.URL+path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *nethttp.Request) (*nethttp.Response, []byte) {
	t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	if resp, _ := env.do(t, "GET", "/healthz", nil); resp.StatusCode != 200 {
		t.Fatalf("healthz=%d", resp.StatusCode)
	}
	if resp, _ := env.do(t, "GET", "/readyz", nil); resp.StatusCode != 200 {
		t.Fatalf("readyz=%d", resp.StatusCode)
	}
	env.backend.Set(func(b *mock.Backend) { b.ModelLoaded = false })
	if resp, _ := env.do(t, "GET", "/readyz", nil); resp.StatusCode != 503 {
		t.Fatalf("readyz degraded=%d", resp.StatusCode)
	}
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, "GET", "/", nil)
	if resp.StatusCode != 200 || !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("status=%d ct=%q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	for _, want := range []string{`name="CreditScore"`, `value="650"`, "Run a prediction to see the analysis results here."} {
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestSinglePredictionFlow(t *testing.T) {
	env := newTestEnv(t)
	env.backend.Single = &churn.PredictionResult{Probability: 0.23, Prediction: 0, Status: "Stayed"}

	resp, body := env.do(t, "PATCH", "/api/profile", map[string]string{"field": "Age", "value": "41"})
	if resp.StatusCode != 200 {
		t.Fatalf("patch=%d %s", resp.StatusCode, body)
	}

	resp, body = env.do(t, "POST", "/api/predict", nil)
	if resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("predict=%d %s", resp.StatusCode, body)
	}
	env.reg.Wait()

	_, body = env.do(t, "GET", "/api/predict", nil)
	panel := decode[dashboard.ResultPanel](t, body)
	if panel.View != "result" || panel.Percent != "23.0%" || panel.Result.Status != "Stayed" {
		t.Fatalf("panel=%+v", panel)
	}

	resp, body = env.do(t, "GET", "/api/predict/gauge.png?size=160", nil)
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") != "image/png" || len(body) == 0 {
		t.Fatalf("gauge=%d ct=%q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestInvalidProfileRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, "PATCH", "/api/profile", map[string]string{"field": "CreditScore", "value": ""})
	if resp.StatusCode != 200 {
		t.Fatalf("patch=%d %s", resp.StatusCode, body)
	}
	if !bytes.Contains(body, []byte(`"valid":false`)) {
		t.Fatalf("body=%s", body)
	}

	resp, body = env.do(t, "POST", "/api/predict", nil)
	if resp.StatusCode != nethttp.StatusUnprocessableEntity || !bytes.Contains(body, []byte(`"invalid_profile"`)) {
		t.Fatalf("predict=%d %s", resp.StatusCode, body)
	}
	if env.backend.Calls() != 0 {
		t.Fatalf("backend called %d times", env.backend.Calls())
	}

	resp, _ = env.do(t, "PATCH", "/api/profile", map[string]string{"field": "Nope", "value": "1"})
	if resp.StatusCode != 400 {
		t.Fatalf("unknown field=%d", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", "/api/predict/gauge.png", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("gauge without result=%d", resp.StatusCode)
	}
}

func uploadRequest(t *testing.T, url, name, content string) *nethttp.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()
	req, _ := nethttp.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBatchFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, "POST", "/api/batch", nil)
	if resp.StatusCode != nethttp.StatusConflict {
		t.Fatalf("batch without file=%d %s", resp.StatusCode, body)
	}

	var csv strings.Builder
	csv.WriteString("Geography,Gender,CreditScore,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary\n")
	for i := 0; i < 7; i++ {
		csv.WriteString("Spain,Female,700,35,3,1000,1,0,1,45000\n")
	}
	resp, body = env.send(t, uploadRequest(t, env.srv.URL+"/api/batch/file", "customers.csv", csv.String()))
	if resp.StatusCode != 200 {
		t.Fatalf("upload=%d %s", resp.StatusCode, body)
	}
	if sel := decode[dashboard.BatchPanel](t, body); !sel.CanSubmit || sel.FileName != "customers.csv" {
		t.Fatalf("panel=%+v", sel)
	}

	resp, body = env.do(t, "POST", "/api/batch", nil)
	if resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("submit=%d %s", resp.StatusCode, body)
	}
	env.reg.Wait()

	_, body = env.do(t, "GET", "/api/batch", nil)
	panel := decode[dashboard.BatchPanel](t, body)
	if panel.Total != 7 || len(panel.Rows) != 5 || panel.Caption != "Showing first 5 of 7 rows." {
		t.Fatalf("panel=%+v", panel)
	}
}

func TestUploadRejectsNonCSV(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.send(t, uploadRequest(t, env.srv.URL+"/api/batch/file", "customers.xlsx", "x"))
	if resp.StatusCode != nethttp.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestEventsStreamSendsSnapshotsAndUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.backend.Single = &churn.PredictionResult{Probability: 0.8, Prediction: 1, Status: "Exited"}
	env.do(t, "GET", "/api/profile", nil) // establish the session cookie

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := nethttp.NewRequestWithContext(ctx, "GET", env.srv.URL+"/api/events", nil)
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}

	events := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "event: ") {
				events <- strings.TrimPrefix(line, "event: ")
			}
		}
		close(events)
	}()

	next := func() string {
		select {
		case ev := <-events:
			return ev
		case <-ctx.Done():
			t.Fatalf("timed out waiting for event")
			return ""
		}
	}
	if a, b := next(), next(); a != string(realtime.EventSingle) || b != string(realtime.EventBatch) {
		t.Fatalf("snapshots=%q,%q", a, b)
	}

	if resp, body := env.do(t, "POST", "/api/predict", nil); resp.StatusCode != nethttp.StatusAccepted {
		t.Fatalf("predict=%d %s", resp.StatusCode, body)
	}
	if a, b := next(), next(); a != string(realtime.EventSingle) || b != string(realtime.EventSingle) {
		t.Fatalf("updates=%q,%q", a, b)
	}
}
