package anomaly

// Detector runs the per-dimension independence tests against the current ratings.
type Detector interface {
	Analyze(dimension Dimension) ([]Record, error)
	AnalyzeAll() map[Dimension][]Record
}

// Scorer folds anomaly records into a 0-100 quality score.
type Scorer interface {
	Score(records []Record) int
}
