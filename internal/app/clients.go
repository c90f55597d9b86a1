package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/churnboard/internal/config"
	"github.com/yungbote/churnboard/internal/gauge"
	"github.com/yungbote/churnboard/internal/platform/envutil"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/predict"
	"github.com/yungbote/churnboard/internal/realtime/bus"
)

type Clients struct {
	Predict *predict.Client
	Bus     bus.Bus
	Redis   *bus.RedisBus
	Gauge   *gauge.Renderer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg config.Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Prediction backend
	pc, err := predict.New(predict.Options{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout.Std(),
		MaxRetries:   cfg.Backend.MaxRetries,
		RetryBackoff: cfg.Backend.RetryBackoff.Std(),
		Logger:       log,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init predict client: %w", err)
	}

	// Gauge
	g, err := gauge.NewRenderer(envutil.String("GAUGE_FONT", ""))
	if err != nil {
		return Clients{}, fmt.Errorf("init gauge renderer: %w", err)
	}

	// Realtime fan-out: redis when configured, otherwise in-process.
	out := Clients{Predict: pc, Gauge: g, Bus: bus.NewLocalBus()}
	if strings.TrimSpace(cfg.Realtime.RedisAddr) != "" {
		rb, err := bus.NewRedisBus(ctx, log, bus.RedisOptions{
			Addr:     cfg.Realtime.RedisAddr,
			Password: cfg.Realtime.RedisPassword,
			DB:       cfg.Realtime.RedisDB,
			Channel:  cfg.Realtime.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Bus, out.Redis = rb, rb
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
