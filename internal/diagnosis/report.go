// File: internal/diagnosis/report.go
package diagnosis

// ClassifiedIncident pairs one incident with the classification it
// received. Ordinal is 1-based and follows log order.
type ClassifiedIncident struct {
	Ordinal int `json:"ordinal"`
	Incident `json:"incident"`
	Classification
}

// Report is the outcome of one diagnosis pass over a single build log.
type Report struct {
	RunID   string `json:"run_id"`
	LogPath string `json:"log_path"`
	// LogMissing marks a run whose log never existed. Such a run has zero
	// incidents and wrote no marker.
	LogMissing bool                 `json:"log_missing,omitempty"`
	Incidents  []ClassifiedIncident `json:"incidents"`
}

// Count returns the number of incidents found, the engine's scalar result.
func (r *Report) Count() int {
	return len(r.Incidents)
}

// Failed reports whether the log evidenced at least one build failure.
func (r *Report) Failed() bool {
	return len(r.Incidents) > 0
}
