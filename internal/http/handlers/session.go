package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/dashboard"
	"github.com/yungbote/churnboard/internal/http/middleware"
	"github.com/yungbote/churnboard/internal/http/response"
)

var errNoSession = errors.New("no dashboard session on request")

func sessionDashboard(c *gin.Context) (*dashboard.Dashboard, bool) {
	d := middleware.Dashboard(c)
	if d == nil {
		response.RespondError(c, http.StatusInternalServerError, "no_session", errNoSession)
		return nil, false
	}
	return d, true
}
