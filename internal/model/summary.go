package model

import "time"

// RunSummary captures metrics from a single generation run.
type RunSummary struct {
	RunID            string
	Seed             uint64
	Format           string
	ClaimsGenerated  int
	ClaimsAnomalous  int
	AnomaliesByType  map[AnomalyType]int
	BytesWritten     int
	DurationGenerate time.Duration
	DurationRender   time.Duration
	DurationTotal    time.Duration
}

// AnomalyCount returns the total number of anomalies across all types.
func (s *RunSummary) AnomalyCount() int {
	n := 0
	for _, c := range s.AnomaliesByType {
		n += c
	}
	return n
}
