package dashboard

import (
	"github.com/yungbote/churnboard/internal/batch"
	"github.com/yungbote/churnboard/internal/churn"
	"github.com/yungbote/churnboard/internal/lifecycle"
)

const resultPrompt = "Run a prediction to see the analysis results here."

// ResultPanel is the render model of the prediction-analysis region. Which
// fields are set depends on View.
type ResultPanel struct {
	View    lifecycle.View          `json:"view"`
	Phase   lifecycle.Phase         `json:"phase"`
	Prompt  string                  `json:"prompt,omitempty"`
	Result  *churn.PredictionResult `json:"result,omitempty"`
	Percent string                  `json:"percent,omitempty"`
	Summary string                  `json:"summary,omitempty"`
	Exits   bool                    `json:"exits,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func resultPanel(s lifecycle.Snapshot[churn.PredictionResult]) ResultPanel {
	p := ResultPanel{View: s.View(), Phase: s.Phase}
	switch p.View {
	case lifecycle.ViewPlaceholder:
		p.Prompt = resultPrompt
	case lifecycle.ViewResult:
		r := s.Result
		p.Result = &r
		p.Percent = r.Percent()
		p.Summary = r.Summary()
		p.Exits = r.Exits()
	case lifecycle.ViewError:
		p.Error = s.Error
	}
	return p
}

func (d *Dashboard) ResultPanel() ResultPanel { return resultPanel(d.single.Snapshot()) }

// BatchPanel is the render model of the batch upload region.
type BatchPanel struct {
	View      lifecycle.View     `json:"view"`
	Phase     lifecycle.Phase    `json:"phase"`
	FileName  string             `json:"file_name,omitempty"`
	CanSubmit bool               `json:"can_submit"`
	Rows      []batch.PreviewRow `json:"rows"`
	Total     int                `json:"total"`
	Caption   string             `json:"caption,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func batchPanel(s lifecycle.Snapshot[batch.Summary], file churn.SelectedFile) BatchPanel {
	p := BatchPanel{View: s.View(), Phase: s.Phase, Rows: []batch.PreviewRow{}}
	if file != nil {
		p.FileName = file.Name()
	}
	p.CanSubmit = file != nil && s.Phase != lifecycle.Pending
	switch p.View {
	case lifecycle.ViewResult:
		if !s.Result.Empty() {
			p.Rows = s.Result.Preview
			p.Total = s.Result.Total
			p.Caption = s.Result.Caption()
		}
	case lifecycle.ViewError:
		p.Error = s.Error
	}
	return p
}

func (d *Dashboard) BatchPanel() BatchPanel { return batchPanel(d.batch.Snapshot(), d.SelectedFile()) }
