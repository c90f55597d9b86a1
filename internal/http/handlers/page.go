package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/predict"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// PageTemplates is installed on the engine with SetHTMLTemplate.
func PageTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

type pageData struct {
	Profile     profileView
	Geographies []churn.Geography
	Genders     []churn.Gender
	FileField   string
}

// GET /
func (h *PageHandler) Index(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Profile:     renderProfile(d.Profile()),
		Geographies: []churn.Geography{churn.GeographyFrance, churn.GeographyGermany, churn.GeographySpain},
		Genders:     []churn.Gender{churn.GenderMale, churn.GenderFemale},
		FileField:   predict.BatchFileField,
	})
}
