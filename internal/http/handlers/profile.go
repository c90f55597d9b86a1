package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/http/response"
	"github.com/yungbote/churnboard/internal/platform/apierr"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler { return &ProfileHandler{} }

type fieldView struct {
	Name  churn.Field `json:"name"`
	Label string      `json:"label"`
	Kind  string      `json:"kind"`
	Value string      `json:"value"`
	Error string      `json:"error,omitempty"`
}

// profileView carries values as form text; a cleared numeric field is NaN,
// which JSON cannot encode.
type profileView struct {
	Fields []fieldView `json:"fields"`
	Valid  bool        `json:"valid"`
}

func renderProfile(p churn.CustomerProfile) profileView {
	problems := map[churn.Field]string{}
	for _, fe := range churn.Validate(p) {
		problems[fe.Field] = fe.Message
	}
	values := p.FormValues()
	fields := make([]fieldView, 0, len(churn.Fields))
	for _, f := range churn.Fields {
		fields = append(fields, fieldView{
			Name:  f,
			Label: f.Label(),
			Kind:  f.Kind().String(),
			Value: values[f],
			Error: problems[f],
		})
	}
	return profileView{Fields: fields, Valid: len(problems) == 0}
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	response.RespondOK(c, renderProfile(d.Profile()))
}

// PATCH /api/profile
// body: { "field": "CreditScore", "value": "720" }
// Invalid values are stored as-is and reported per field; only submission
// rejects them.
func (h *ProfileHandler) Patch(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	field, err := churn.ParseField(req.Field)
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "unknown_field", err), nil)
		return
	}
	p, err := d.Edit(field, req.Value)
	if err != nil {
		if errors.Is(err, churn.ErrUnknownField) {
			response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "unknown_field", err), nil)
			return
		}
		response.RespondAPIError(c, err, nil)
		return
	}
	response.RespondOK(c, renderProfile(p))
}

// POST /api/profile/reset
func (h *ProfileHandler) Reset(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	response.RespondOK(c, renderProfile(d.Reset()))
}
