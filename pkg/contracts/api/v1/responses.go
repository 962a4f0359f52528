package api

// GenerateReportsResponse lists one result per submitted link, in input
// order.
type GenerateReportsResponse struct {
	RunID     string         `json:"run_id"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []SourceResult `json:"results"`
}

// SourceResult is the outcome for one link. DownloadURL is set on success
// and Error on failure.
type SourceResult struct {
	Source      string       `json:"source"`
	OK          bool         `json:"ok"`
	ClientName  string       `json:"client_name,omitempty"`
	FileName    string       `json:"file_name,omitempty"`
	DownloadURL string       `json:"download_url,omitempty"`
	Degraded    []string     `json:"degraded,omitempty"`
	Error       *SourceError `json:"error,omitempty"`
}

// SourceError describes why a link produced no report.
type SourceError struct {
	Stage   string `json:"stage"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
