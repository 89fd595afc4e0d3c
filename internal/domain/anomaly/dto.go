package anomaly

type RecordResponse struct {
	Dimension        string  `json:"dimension"`
	Category         string  `json:"category"`
	Cell             string  `json:"cell"`
	Expected         float64 `json:"expected"`
	Actual           int     `json:"actual"`
	Deviation        float64 `json:"deviation"`
	Residual         float64 `json:"residual"`
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	Severity         string  `json:"severity"`
	Population       int     `json:"population"`
}

type AnalysisResponse struct {
	Dimension string           `json:"dimension,omitempty"`
	Records   []RecordResponse `json:"anomalies"`
	Score     int              `json:"quality_score"`
}

func ToResponses(records []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, RecordResponse{
			Dimension:        string(r.Dimension),
			Category:         r.Category,
			Cell:             r.Cell,
			Expected:         r.Expected,
			Actual:           r.Actual,
			Deviation:        r.Deviation,
			Residual:         r.Residual,
			ChiSquare:        r.ChiSquare,
			DegreesOfFreedom: r.DegreesOfFreedom,
			PValue:           r.PValue,
			Severity:         string(r.Severity),
			Population:       r.Population,
		})
	}
	return out
}
