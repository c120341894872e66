package dto

import "golang-disclosure-watcher/internal/entity"

// PDFDocument is one stored document loaded from the blob store and prepared
// for a model call (already trimmed to the page budget).
type PDFDocument struct {
	Title        string
	DocumentType entity.DocumentType
	Data         []byte
	Pages        int
}

// ReleaseSummaryResult is the structured summary the model produces for a release.
type ReleaseSummaryResult struct {
	Overview   string            `json:"overview"`
	Highlights []string          `json:"highlights"`
	Lowlights  []string          `json:"lowlights"`
	KeyMetrics map[string]string `json:"key_metrics"`
}

// CustomAnalysisResult is a subscriber-specific analysis produced under a
// custom prompt.
type CustomAnalysisResult struct {
	Analysis  string   `json:"analysis"`
	KeyPoints []string `json:"key_points"`
}
