package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/churnboard/internal/http/handlers"
	httpMW "github.com/yungbote/churnboard/internal/http/middleware"
	"github.com/yungbote/churnboard/internal/observability"
	"github.com/yungbote/churnboard/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	Sessions       httpMW.SessionStore
	SessionOptions httpMW.SessionOptions

	PageHandler     *httpH.PageHandler
	ProfileHandler  *httpH.ProfileHandler
	PredictHandler  *httpH.PredictHandler
	BatchHandler    *httpH.BatchHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.SetHTMLTemplate(httpH.PageTemplates())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	session := r.Group("/")
	session.Use(httpMW.Session(cfg.Sessions, cfg.SessionOptions))
	{
		if cfg.PageHandler != nil {
			session.GET("/", cfg.PageHandler.Index)
		}
	}

	api := session.Group("/api")
	{
		// Form
		if cfg.ProfileHandler != nil {
			api.GET("/profile", cfg.ProfileHandler.Get)
			api.PATCH("/profile", cfg.ProfileHandler.Patch)
			api.POST("/profile/reset", cfg.ProfileHandler.Reset)
		}

		// Single prediction
		if cfg.PredictHandler != nil {
			api.POST("/predict", cfg.PredictHandler.Submit)
			api.GET("/predict", cfg.PredictHandler.Get)
			api.GET("/predict/gauge.png", cfg.PredictHandler.Gauge)
		}

		// Batch prediction
		if cfg.BatchHandler != nil {
			api.POST("/batch/file", cfg.BatchHandler.SelectFile)
			api.POST("/batch", cfg.BatchHandler.Submit)
			api.GET("/batch", cfg.BatchHandler.Get)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
