package dto

// ImportResult aggregates the per-ticker counters of one import run. Every
// per-document failure degrades to a counter here, never to an aborted batch.
type ImportResult struct {
	Ticker          string `json:"ticker"`
	Candidates      int    `json:"candidates"`
	Classified      int    `json:"classified"`
	Stored          int    `json:"stored"`
	Existing        int    `json:"existing"`
	Failed          int    `json:"failed"`
	Skipped         int    `json:"skipped"`
	Analyzed        int    `json:"analyzed"`
	AnalysisFailed  int    `json:"analysis_failed"`
	Customized      int    `json:"customized"`
	CustomizeFailed int    `json:"customize_failed"`
	IsSuccess       bool   `json:"is_success"`
	Error           string `json:"error,omitempty"`
}

// RegenerationResult reports a prompt-change regeneration run for one
// subscriber and ticker.
type RegenerationResult struct {
	UserID      uint   `json:"user_id"`
	Ticker      string `json:"ticker"`
	Total       int    `json:"total"`
	Regenerated int    `json:"regenerated"`
	Cached      int    `json:"cached"`
	Skipped     int    `json:"skipped"`
}

// BackfillContinuation is the stream message that resumes a historical
// backfill at the next candidate offset. Redelivery is harmless: the slice it
// names re-imports idempotently.
type BackfillContinuation struct {
	JobID     uint   `json:"job_id"`
	Ticker    string `json:"ticker"`
	Offset    int    `json:"offset"`
	BatchSize int    `json:"batch_size"`
}
