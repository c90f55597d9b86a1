package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/config"
	"github.com/yungbote/churnboard/internal/dashboard"
	apphttp "github.com/yungbote/churnboard/internal/http"
	httpMW "github.com/yungbote/churnboard/internal/http/middleware"
	"github.com/yungbote/churnboard/internal/observability"
	"github.com/yungbote/churnboard/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg config.Config, metrics *observability.Metrics, sessions *dashboard.Registry, h Handlers) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:         log,
		ServiceName: cfg.Telemetry.ServiceName,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Metrics:     metrics,
		Sessions:    sessions,
		SessionOptions: httpMW.SessionOptions{
			TTL:    cfg.Sessions.IdleTTL.Std(),
			Secure: cfg.HTTP.SecureCookies,
		},
		PageHandler:     h.Page,
		ProfileHandler:  h.Profile,
		PredictHandler:  h.Predict,
		BatchHandler:    h.Batch,
		RealtimeHandler: h.Realtime,
		HealthHandler:   h.Health,
	})
}
