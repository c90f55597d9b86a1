package app

import (
	"github.com/yungbote/churnboard/internal/config"
	httpH "github.com/yungbote/churnboard/internal/http/handlers"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/realtime"
)

type Handlers struct {
	Page     *httpH.PageHandler
	Profile  *httpH.ProfileHandler
	Predict  *httpH.PredictHandler
	Batch    *httpH.BatchHandler
	Realtime *httpH.RealtimeHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg config.Config, clients Clients, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Page:     httpH.NewPageHandler(),
		Profile:  httpH.NewProfileHandler(),
		Predict:  httpH.NewPredictHandler(log, clients.Gauge),
		Batch:    httpH.NewBatchHandler(log, cfg.HTTP.MaxUploadBytes),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		Health:   httpH.NewHealthHandler(clients.Predict),
	}
}
