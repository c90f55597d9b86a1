// Package mock is an in-process stand-in for the prediction server. It speaks
// the same wire format: PascalCase profile in, snake_case verdict out, CSV
// batches answered with echoed rows plus Churn_* columns.
package mock

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yungbote/churnboard/internal/churn"
)

type Backend struct {
	mu sync.Mutex

	// Single, when set, is returned verbatim by /predict.
	Single *churn.PredictionResult
	// Delay is applied before every response.
	Delay time.Duration
	// Status, when non-zero, makes every prediction endpoint fail with it.
	Status      int
	ModelLoaded bool

	calls atomic.Int64
}

func New() *Backend {
	return &Backend{ModelLoaded: true}
}

// Calls counts requests to the prediction endpoints.
func (b *Backend) Calls() int64 { return b.calls.Load() }

func (b *Backend) Set(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *Backend) settings() (single *churn.PredictionResult, delay time.Duration, status int, loaded bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Single, b.Delay, b.Status, b.ModelLoaded
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		b.health(w)
	case r.Method == http.MethodPost && r.URL.Path == "/predict":
		b.calls.Add(1)
		b.predict(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/predict_batch":
		b.calls.Add(1)
		b.predictBatch(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (b *Backend) health(w http.ResponseWriter) {
	_, _, _, loaded := b.settings()
	if loaded {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "model_loaded": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "degraded", "model_loaded": false})
}

func (b *Backend) gate(w http.ResponseWriter, r *http.Request) bool {
	_, delay, status, loaded := b.settings()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return false
		}
	}
	if status != 0 {
		writeDetail(w, status, http.StatusText(status))
		return false
	}
	if !loaded {
		writeDetail(w, http.StatusServiceUnavailable, "Model pipeline not available")
		return false
	}
	return true
}

func (b *Backend) predict(w http.ResponseWriter, r *http.Request) {
	if !b.gate(w, r) {
		return
	}
	var p churn.CustomerProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	single, _, _, _ := b.settings()
	if single != nil {
		writeJSON(w, http.StatusOK, single)
		return
	}
	prob := Score(p)
	pred := 0
	status := "Stayed"
	if prob >= 0.5 {
		pred, status = 1, "Exited"
	}
	writeJSON(w, http.StatusOK, churn.PredictionResult{Probability: prob, Prediction: pred, Status: status})
}

func (b *Backend) predictBatch(w http.ResponseWriter, r *http.Request) {
	if !b.gate(w, r) {
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file field required")
		return
	}
	defer f.Close()

	records, err := readProfiles(f)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		prob := Score(rec.profile)
		pred := 0
		if prob >= 0.5 {
			pred = 1
		}
		row := make(map[string]any, len(rec.raw)+2)
		for k, v := range rec.raw {
			row[k] = v
		}
		row["Churn_Prediction"] = pred
		row["Churn_Probability"] = prob
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

type record struct {
	raw     map[string]string
	profile churn.CustomerProfile
}

func readProfiles(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, f := range churn.Fields {
		if _, ok := index[string(f)]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV must contain columns: %s", strings.Join(missing, ", "))
	}

	var out []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		rec := record{raw: make(map[string]string, len(headers)), profile: churn.DefaultProfile()}
		for h, i := range index {
			if i < len(row) {
				rec.raw[h] = strings.TrimSpace(row[i])
			}
		}
		for _, f := range churn.Fields {
			rec.profile, _ = churn.Apply(rec.profile, f, rec.raw[string(f)])
		}
		if errs := churn.Validate(rec.profile); len(errs) > 0 {
			return nil, fmt.Errorf("row %d: %v", len(out)+1, errs)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Score is a deterministic stand-in for the model: older, inactive,
// single-product German customers score higher.
func Score(p churn.CustomerProfile) float64 {
	z := -3.2 + 0.065*(p.Age-18) - 0.9*p.IsActiveMember - 0.002*(p.CreditScore-650)
	if p.Geography == churn.GeographyGermany {
		z += 0.7
	}
	if p.Gender == churn.GenderFemale {
		z += 0.5
	}
	if p.NumOfProducts == 1 {
		z += 0.4
	} else if p.NumOfProducts >= 3 {
		z += 1.8
	}
	prob := 1 / (1 + math.Exp(-z))
	v, _ := strconv.ParseFloat(strconv.FormatFloat(prob, 'f', 4, 64), 64)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
