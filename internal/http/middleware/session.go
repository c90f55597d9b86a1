package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/dashboard"
	"github.com/yungbote/churnboard/internal/platform/ctxutil"
)

const (
	SessionCookie = "churnboard_session"
	dashboardKey  = "churnboard.dashboard"
)

type SessionStore interface {
	GetOrCreate(id string) (*dashboard.Dashboard, bool)
}

type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// Session binds every request to a dashboard, issuing a fresh session cookie
// when the browser has none or its session has been evicted.
func Session(store SessionStore, opts SessionOptions) gin.HandlerFunc {
	maxAge := int(opts.TTL.Seconds())
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		d, created := store.GetOrCreate(id)
		if created || id != d.ID() {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, d.ID(), maxAge, "/", "", opts.Secure, true)
		}
		c.Set(dashboardKey, d)
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), d.ID()))
		c.Next()
	}
}

// Dashboard returns the session dashboard attached by Session.
func Dashboard(c *gin.Context) *dashboard.Dashboard {
	v, ok := c.Get(dashboardKey)
	if !ok {
		return nil
	}
	d, _ := v.(*dashboard.Dashboard)
	return d
}
