package batch

import (
	"fmt"

	"github.com/yungbote/churnboard/internal/churn"
)

// PreviewSize is how many rows of a batch result are rendered.
const PreviewSize = 5

type PreviewRow struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Probability float64 `json:"churn_probability"`
	Prediction  int     `json:"churn_prediction"`
	Score       string  `json:"score"`
	Outcome     string  `json:"outcome"`
}

type Summary struct {
	Preview []PreviewRow `json:"preview"`
	Total   int          `json:"total"`
}

// Caption is the footer under the preview table.
func (s Summary) Caption() string {
	return fmt.Sprintf("Showing first %d of %d rows.", len(s.Preview), s.Total)
}

func (s Summary) Empty() bool { return s.Total == 0 }

// Project keeps the first size rows in input order and the full count.
// Rows have no identifier, so each preview row is labeled by position.
func Project(rows []churn.BatchRow, size int) Summary {
	if size < 0 {
		size = 0
	}
	n := min(len(rows), size)
	preview := make([]PreviewRow, 0, n)
	for i, r := range rows[:n] {
		preview = append(preview, PreviewRow{
			Index:       i,
			Label:       fmt.Sprintf("Customer %d", i+1),
			Probability: r.Probability,
			Prediction:  r.Prediction,
			Score:       churn.Percent(r.Probability),
			Outcome:     r.Outcome(),
		})
	}
	return Summary{Preview: preview, Total: len(rows)}
}
