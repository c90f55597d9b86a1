package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/dashboard"
	"github.com/yungbote/churnboard/internal/http/response"
	"github.com/yungbote/churnboard/internal/platform/apierr"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/predict"
)

type BatchHandler struct {
	log      *logger.Logger
	maxBytes int64
}

func NewBatchHandler(log *logger.Logger, maxUploadBytes int64) *BatchHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	return &BatchHandler{log: log.With("handler", "BatchHandler"), maxBytes: maxUploadBytes}
}

// POST /api/batch/file
// multipart form, field "file". Replaces the session's selected file; nothing
// is sent to the backend until POST /api/batch.
func (h *BatchHandler) SelectFile(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	fh, err := c.FormFile(predict.BatchFileField)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("upload exceeds %d bytes", h.maxBytes))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fh.Size > h.maxBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("upload exceeds %d bytes", h.maxBytes))
		return
	}
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".csv" {
		response.RespondError(c, http.StatusUnsupportedMediaType, "not_csv", fmt.Errorf("expected a .csv file, got %q", fh.Filename))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("open upload: %w", err), nil)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("read upload: %w", err), nil)
		return
	}
	d.SelectFile(churn.MemoryFile(fh.Filename, raw))
	h.log.Debug("batch file selected", "session_id", d.ID(), "file", fh.Filename, "bytes", len(raw))
	response.RespondOK(c, d.BatchPanel())
}

// POST /api/batch
func (h *BatchHandler) Submit(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	ticket, err := d.SubmitBatch(c.Request.Context())
	if err != nil {
		if errors.Is(err, dashboard.ErrNoFile) {
			response.RespondAPIError(c, apierr.New(http.StatusConflict, "no_file_selected", err), nil)
			return
		}
		response.RespondAPIError(c, err, nil)
		return
	}
	response.RespondAccepted(c, gin.H{"ticket": ticket, "panel": d.BatchPanel()})
}

// GET /api/batch
func (h *BatchHandler) Get(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	response.RespondOK(c, d.BatchPanel())
}
