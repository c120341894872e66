package entity

import "fmt"

// DocumentType classifies a disclosure document by its role within a release.
type DocumentType string

const (
	DocumentTypeSummary         DocumentType = "summary"          // 決算短信 (earnings summary)
	DocumentTypePresentation    DocumentType = "presentation"     // 決算説明資料 (earnings presentation)
	DocumentTypeGrowthPotential DocumentType = "growth_potential" // 成長可能性に関する説明資料
	DocumentTypeMidTermPlan     DocumentType = "mid_term_plan"    // 中期経営計画
	DocumentTypeOther           DocumentType = "other"            // irrelevant, discarded before storage
)

// ParseDocumentType maps a classifier output string onto the closed enum.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeSummary, DocumentTypePresentation, DocumentTypeGrowthPotential, DocumentTypeMidTermPlan, DocumentTypeOther:
		return DocumentType(s), nil
	default:
		return "", fmt.Errorf("unknown document type: %q", s)
	}
}

// ReleaseKind identifies which disclosure event a release aggregates.
type ReleaseKind string

const (
	ReleaseKindQuarterlyEarnings ReleaseKind = "quarterly_earnings"
	ReleaseKindGrowthPotential   ReleaseKind = "growth_potential"
	ReleaseKindMidTermPlan       ReleaseKind = "mid_term_plan"
)

// ReleaseKind maps a document type onto the release kind it belongs to.
func (d DocumentType) ReleaseKind() (ReleaseKind, error) {
	switch d {
	case DocumentTypeSummary, DocumentTypePresentation:
		return ReleaseKindQuarterlyEarnings, nil
	case DocumentTypeGrowthPotential:
		return ReleaseKindGrowthPotential, nil
	case DocumentTypeMidTermPlan:
		return ReleaseKindMidTermPlan, nil
	case DocumentTypeOther:
		return "", fmt.Errorf("document type %q has no release kind", d)
	default:
		return "", fmt.Errorf("unknown document type: %q", d)
	}
}

// AnalysisPriority orders documents for summarization: the primary disclosure
// first, supplementary presentation second, strategic documents last.
func (d DocumentType) AnalysisPriority() int {
	switch d {
	case DocumentTypeSummary:
		return 0
	case DocumentTypePresentation:
		return 1
	case DocumentTypeGrowthPotential:
		return 2
	case DocumentTypeMidTermPlan:
		return 3
	default:
		return 99
	}
}

// IsPeriodic reports whether documents of this type belong to a fiscal quarter.
// Plan-type documents aggregate under a release without a quarter.
func (d DocumentType) IsPeriodic() bool {
	switch d {
	case DocumentTypeSummary, DocumentTypePresentation:
		return true
	default:
		return false
	}
}
