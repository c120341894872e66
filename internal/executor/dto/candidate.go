package dto

import (
	"time"

	"golang-disclosure-watcher/internal/entity"
)

// DocumentCandidate is a disclosure listing entry merged from the sources,
// unique by PDFURL within one import batch. Transient, never persisted.
type DocumentCandidate struct {
	PDFURL          string    `json:"pdf_url"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publication_date"`
	SourceName      string    `json:"source_name"`
}

// ClassificationResult is the raw model output for one candidate. Year and
// quarter stay nullable: the model may not be able to resolve them.
type ClassificationResult struct {
	DocumentType  string  `json:"document_type"`
	FiscalYear    *string `json:"fiscal_year"`
	FiscalQuarter *int    `json:"fiscal_quarter"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

// ClassifiedDocument is a candidate with a validated classification attached.
// FiscalQuarter uses entity.QuarterNone for non-periodic documents.
type ClassifiedDocument struct {
	DocumentCandidate
	DocumentType  entity.DocumentType `json:"document_type"`
	FiscalYear    string              `json:"fiscal_year"`
	FiscalQuarter int                 `json:"fiscal_quarter"`
	Confidence    float64             `json:"confidence"`
	Reasoning     string              `json:"reasoning"`
}
