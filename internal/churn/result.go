package churn

import "fmt"

// PredictionResult is the backend's verdict for one profile. Prediction is
// derived server-side from Probability and is displayed as-is.
type PredictionResult struct {
	Probability float64 `json:"churn_probability"`
	Prediction  int     `json:"churn_prediction"`
	Status      string  `json:"status"`
}

func (r PredictionResult) Exits() bool { return r.Prediction == 1 }

// Percent formats the probability the way the result panel shows it, e.g. "23.0%".
func (r PredictionResult) Percent() string { return Percent(r.Probability) }

// Summary is the one-line reading under the gauge.
func (r PredictionResult) Summary() string {
	if r.Exits() {
		return "Based on the current profile, this customer is likely to leave."
	}
	return "Based on the current profile, this customer is likely to stay."
}

// BatchRow is one positional result of a batch upload. The server echoes the
// input columns too; only the prediction columns are kept.
type BatchRow struct {
	Probability float64 `json:"Churn_Probability"`
	Prediction  int     `json:"Churn_Prediction"`
}

func (r BatchRow) Exits() bool { return r.Prediction == 1 }

// Outcome is the short table label.
func (r BatchRow) Outcome() string {
	if r.Exits() {
		return "Exit"
	}
	return "Stay"
}

func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
