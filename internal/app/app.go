package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/churnboard/internal/config"
	"github.com/yungbote/churnboard/internal/dashboard"
	apphttp "github.com/yungbote/churnboard/internal/http"
	"github.com/yungbote/churnboard/internal/lifecycle"
	"github.com/yungbote/churnboard/internal/observability"
	"github.com/yungbote/churnboard/internal/platform/envutil"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/realtime"
	"github.com/yungbote/churnboard/internal/realtime/bus"
)

type App struct {
	Log       *logger.Logger
	Cfg       config.Config
	Clients   Clients
	Metrics   *observability.Metrics
	Hub       *realtime.Hub
	Sessions  *dashboard.Registry
	Publisher *bus.Publisher
	Router    *gin.Engine
	Server    *apphttp.Server

	otelShutdown func(context.Context) error
}

// New builds the logger and configuration from the environment and wires
// every component. Nothing is started until Run.
func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg config.Config) (*App, error) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Telemetry.Version,
	})
	metrics := observability.NewMetrics(envutil.Bool("METRICS_ENABLED", false))

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log)
	publisher := bus.NewPublisher(clients.Bus, log, cfg.Realtime.QueueSize)
	publisher.OnDrop = metrics.IncRealtimeDropped

	sessions := dashboard.NewRegistry(
		instrumentPredictor(clients.Predict, metrics),
		log,
		cfg.Sessions.IdleTTL.Std(),
		dashboard.Options{
			PreviewSize: cfg.Sessions.PreviewSize,
			OnChange:    onChange(publisher, metrics),
		},
	)

	handlers := wireHandlers(log, cfg, clients, hub)
	router := wireRouter(log, cfg, metrics, sessions, handlers)
	server := apphttp.NewServer(log, router, apphttp.ServerOptions{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Std(),
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Std(),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Metrics:      metrics,
		Hub:          hub,
		Sessions:     sessions,
		Publisher:    publisher,
		Router:       router,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// onChange turns dashboard transitions into realtime messages. It runs under
// the lifecycle lock, so it only enqueues.
func onChange(p *bus.Publisher, m *observability.Metrics) func(dashboard.Change) {
	return func(ch dashboard.Change) {
		msg := realtime.Message{Channel: ch.Session}
		var phase lifecycle.Phase
		switch ch.Surface {
		case dashboard.SurfaceSingle:
			msg.Event, msg.Data, phase = realtime.EventSingle, ch.Single, ch.Single.Phase
		case dashboard.SurfaceBatch:
			msg.Event, msg.Data, phase = realtime.EventBatch, ch.Batch, ch.Batch.Phase
		default:
			return
		}
		if phase == lifecycle.Succeeded || phase == lifecycle.Failed {
			m.ObservePrediction(string(ch.Surface), phase.String())
		}
		p.Enqueue(msg)
	}
}

// Run starts the HTTP server and background workers and blocks until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Clients.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
		return fmt.Errorf("start realtime forwarder: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server.Run(gctx) })
	g.Go(func() error { return a.Publisher.Run(gctx) })
	g.Go(func() error { return a.Sessions.RunJanitor(gctx, a.Cfg.Sessions.SweepInterval.Std()) })
	if a.Metrics != nil {
		g.Go(func() error { return a.observeSessions(gctx) })
		if a.Clients.Redis != nil {
			g.Go(func() error {
				return a.Metrics.RunRedisCollector(gctx, a.Log, a.Clients.Redis.Client(), 15*time.Second)
			})
		}
	}

	a.Log.Info("churnboard running", "addr", a.Cfg.HTTP.Addr, "backend", a.Clients.Predict.BaseURL())
	return g.Wait()
}

func (a *App) observeSessions(ctx context.Context) error {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		a.Metrics.SetSessions(a.Sessions.Len())
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Close releases clients and flushes telemetry. In-flight predictions get up
// to the backend timeout to settle first.
func (a *App) Close() {
	if a == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		a.Sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(a.Cfg.Backend.Timeout.Std()):
		a.Log.Warn("gave up waiting for in-flight predictions")
	}

	a.Clients.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.otelShutdown(ctx); err != nil {
		a.Log.Warn("otel shutdown failed", "error", err)
	}
	a.Log.Sync()
}
