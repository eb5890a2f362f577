package output

// RunOutput is the JSON output of the run command.
type RunOutput struct {
	RunID   string        `json:"run_id"`
	Input   string        `json:"input"`
	Records int           `json:"records"`
	Routes  int           `json:"routes"`
	Outputs []string      `json:"outputs"`
	Stages  []StageTiming `json:"stages"`
	TotalMS int64         `json:"total_ms"`
}

// StageTiming is the duration of one pipeline stage.
type StageTiming struct {
	Stage string `json:"stage"`
	MS    int64  `json:"ms"`
}

// ValidateOutput is the JSON output of the validate command.
type ValidateOutput struct {
	RunID             string         `json:"run_id"`
	Engine            string         `json:"engine"`
	Table             string         `json:"table"`
	Tolerance         float64        `json:"tolerance"`
	RowsChecked       int            `json:"rows_checked"`
	ValuesChecked     int            `json:"values_checked"`
	MissingInSQL      []string       `json:"missing_in_sql,omitempty"`
	MissingInPipeline []string       `json:"missing_in_pipeline,omitempty"`
	Mismatches        []MismatchInfo `json:"mismatches"`
	OK                bool           `json:"ok"`
}

// MismatchInfo is one disagreeing value between the pipeline and SQL.
// Nil means the metric was undefined on that side.
type MismatchInfo struct {
	Route    string   `json:"route"`
	Month    string   `json:"month"`
	Metric   string   `json:"metric"`
	Pipeline *float64 `json:"pipeline"`
	SQL      *float64 `json:"sql"`
}

// SummaryOutput is the JSON output of the summary command.
type SummaryOutput struct {
	RunID  string           `json:"run_id"`
	Routes []map[string]any `json:"routes,omitempty"`
	Fleet  []map[string]any `json:"fleet,omitempty"`
}

// AnalysisInfo describes one canned SQL analysis.
type AnalysisInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QueryOutput is the JSON output of the query command.
type QueryOutput struct {
	Analysis string           `json:"analysis"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}
