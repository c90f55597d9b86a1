package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/churnboard/internal/batch"
	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/lifecycle"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/predict"
)

var ErrNoFile = errors.New("no file selected")

// Predictor is the part of predict.Client the dashboard needs.
type Predictor interface {
	PredictSingle(ctx context.Context, profile churn.CustomerProfile) (churn.PredictionResult, error)
	PredictBatch(ctx context.Context, file churn.SelectedFile) ([]churn.BatchRow, error)
}

type Surface string

const (
	SurfaceSingle Surface = "single"
	SurfaceBatch  Surface = "batch"
)

// Change is emitted after every lifecycle transition of either surface.
type Change struct {
	Session string
	Surface Surface
	Single  *ResultPanel
	Batch   *BatchPanel
}

type Options struct {
	PreviewSize int
	OnChange    func(Change)
}

// Dashboard is one user's view: the form, the single-prediction lifecycle and
// the batch lifecycle. The two lifecycles never share state.
type Dashboard struct {
	id        string
	predictor Predictor
	log       *logger.Logger

	previewSize int
	onChange    func(Change)

	mu      sync.Mutex
	profile churn.CustomerProfile
	file    churn.SelectedFile

	single *lifecycle.State[churn.PredictionResult]
	batch  *lifecycle.State[batch.Summary]

	inflight sync.WaitGroup
}

func New(id string, p Predictor, log *logger.Logger, opts Options) *Dashboard {
	if log == nil {
		log = logger.NewNop()
	}
	size := opts.PreviewSize
	if size <= 0 {
		size = batch.PreviewSize
	}
	d := &Dashboard{
		id:          id,
		predictor:   p,
		log:         log.With("session_id", id),
		previewSize: size,
		onChange:    opts.OnChange,
		profile:     churn.DefaultProfile(),
		single:      lifecycle.New[churn.PredictionResult](),
		batch:       lifecycle.New[batch.Summary](),
	}
	if d.onChange != nil {
		d.single.Observe(func(s lifecycle.Snapshot[churn.PredictionResult]) {
			panel := resultPanel(s)
			d.onChange(Change{Session: d.id, Surface: SurfaceSingle, Single: &panel})
		})
		d.batch.Observe(func(s lifecycle.Snapshot[batch.Summary]) {
			panel := batchPanel(s, d.SelectedFile())
			d.onChange(Change{Session: d.id, Surface: SurfaceBatch, Batch: &panel})
		})
	}
	return d
}

func (d *Dashboard) ID() string { return d.id }

func (d *Dashboard) Profile() churn.CustomerProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile
}

// Edit applies one field change and returns the new profile. Values are not
// validated here; SubmitSingle does that.
func (d *Dashboard) Edit(field churn.Field, raw string) (churn.CustomerProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := churn.Apply(d.profile, field, raw)
	if err != nil {
		return d.profile, err
	}
	d.profile = next
	return next, nil
}

// Reset restores the initial form values.
func (d *Dashboard) Reset() churn.CustomerProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profile = churn.DefaultProfile()
	return d.profile
}

// SubmitSingle validates the current profile and, if it passes, starts a
// prediction in the background. Invalid profiles return churn.FieldErrors and
// leave the lifecycle untouched. ctx supplies trace values only; the request
// outlives it and is bounded by the client timeout.
func (d *Dashboard) SubmitSingle(ctx context.Context) (lifecycle.Ticket, error) {
	profile := d.Profile()
	if errs := churn.Validate(profile); len(errs) > 0 {
		return 0, errs
	}

	ticket := d.single.Submit()
	reqCtx := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		res, err := d.predictor.PredictSingle(reqCtx, profile)
		if err != nil {
			d.log.Warn("single prediction failed", "ticket", ticket, "error", err)
			d.settle(d.single.Fail(ticket, predict.UserMessage(err)), SurfaceSingle, ticket)
			return
		}
		d.settle(d.single.Succeed(ticket, res), SurfaceSingle, ticket)
	}()
	return ticket, nil
}

func (d *Dashboard) SelectFile(f churn.SelectedFile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.file = f
}

func (d *Dashboard) SelectedFile() churn.SelectedFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file
}

// SubmitBatch uploads the selected file in the background. The selection is
// kept afterwards so the same file can be sent again.
func (d *Dashboard) SubmitBatch(ctx context.Context) (lifecycle.Ticket, error) {
	file := d.SelectedFile()
	if file == nil {
		return 0, ErrNoFile
	}

	ticket := d.batch.Submit()
	reqCtx := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		rows, err := d.predictor.PredictBatch(reqCtx, file)
		if err != nil {
			d.log.Warn("batch prediction failed", "ticket", ticket, "file", file.Name(), "error", err)
			d.settle(d.batch.Fail(ticket, predict.BatchFailureMessage), SurfaceBatch, ticket)
			return
		}
		d.settle(d.batch.Succeed(ticket, batch.Project(rows, d.previewSize)), SurfaceBatch, ticket)
	}()
	return ticket, nil
}

func (d *Dashboard) settle(accepted bool, s Surface, t lifecycle.Ticket) {
	if !accepted {
		d.log.Debug("discarding stale resolution", "surface", s, "ticket", t)
	}
}

func (d *Dashboard) Single() lifecycle.Snapshot[churn.PredictionResult] { return d.single.Snapshot() }

func (d *Dashboard) Batch() lifecycle.Snapshot[batch.Summary] { return d.batch.Snapshot() }

// Busy reports whether any request is pending on either surface.
func (d *Dashboard) Busy() bool {
	return d.single.Snapshot().Phase == lifecycle.Pending || d.batch.Snapshot().Phase == lifecycle.Pending
}

// Wait blocks until every request started so far has resolved.
func (d *Dashboard) Wait() { d.inflight.Wait() }
