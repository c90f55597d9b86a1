package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/gauge"
	"github.com/yungbote/churnboard/internal/http/response"
	"github.com/yungbote/churnboard/internal/lifecycle"
	"github.com/yungbote/churnboard/internal/platform/apierr"
	"github.com/yungbote/churnboard/internal/platform/logger"
)

type PredictHandler struct {
	log   *logger.Logger
	gauge *gauge.Renderer
}

func NewPredictHandler(log *logger.Logger, g *gauge.Renderer) *PredictHandler {
	return &PredictHandler{log: log.With("handler", "PredictHandler"), gauge: g}
}

// POST /api/predict
// Starts a prediction for the session's current profile. The outcome arrives
// on /api/events or by polling GET /api/predict.
func (h *PredictHandler) Submit(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	ticket, err := d.SubmitSingle(c.Request.Context())
	if err != nil {
		var fe churn.FieldErrors
		if errors.As(err, &fe) {
			response.RespondAPIError(c, apierr.New(http.StatusUnprocessableEntity, "invalid_profile", err), fe)
			return
		}
		response.RespondAPIError(c, err, nil)
		return
	}
	response.RespondAccepted(c, gin.H{"ticket": ticket, "panel": d.ResultPanel()})
}

// GET /api/predict
func (h *PredictHandler) Get(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	response.RespondOK(c, d.ResultPanel())
}

// GET /api/predict/gauge.png?size=320
func (h *PredictHandler) Gauge(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	snap := d.Single()
	if snap.Phase != lifecycle.Succeeded {
		response.RespondError(c, http.StatusNotFound, "no_result", errors.New("no prediction result to render"))
		return
	}
	size := gauge.DefaultSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_size", err)
			return
		}
		size = n
	}
	png, err := h.gauge.Render(snap.Result, size)
	if err != nil {
		h.log.Error("gauge render failed", "error", err)
		response.RespondAPIError(c, err, nil)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
