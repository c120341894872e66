package repository

import (
	"fmt"
	"strings"

	"golang-disclosure-watcher/internal/executor/dto"
)

// BuildClassifyDisclosurePrompt builds the prompt that classifies one
// disclosure document from its title and publication date.
func BuildClassifyDisclosurePrompt(title, publicationDate string) string {
	return fmt.Sprintf(`
You are an expert in Japanese corporate disclosure documents (適時開示資料).
Classify the document below using ONLY its title and publication date.

Title: %s
Publication date: %s

Classify the document into exactly one of these types:
- "summary": 決算短信 (earnings summary)
- "presentation": 決算説明資料 / 決算説明会資料 (earnings presentation)
- "growth_potential": 事業計画及び成長可能性に関する事項 (growth potential report)
- "mid_term_plan": 中期経営計画 (mid-term management plan)
- "other": anything else (dividends, share buybacks, personnel changes, ...)

Also extract the fiscal period when the title states one. Japanese fiscal
periods are usually written as the period END, e.g. "2026年3月期" is the
fiscal year ending March 2026, which is fiscal year 2025. 第1四半期 means
quarter 1, 中間期/第2四半期 means quarter 2, and a 決算短信 with no quarter
marker is the full-year report (quarter 4).

Respond with a single JSON object and nothing else:
{
  "document_type": "summary|presentation|growth_potential|mid_term_plan|other",
  "fiscal_year": "2025 or null when the title does not state it",
  "fiscal_quarter": "1-4, or null when not applicable or not stated",
  "confidence": 0.0,
  "reasoning": "one short sentence"
}
`, title, publicationDate)
}

// BuildReleaseSummaryPrompt builds the prompt for the canonical release
// summary. The PDF documents themselves are attached alongside the prompt.
func BuildReleaseSummaryPrompt(ticker string, docs []dto.PDFDocument) string {
	return fmt.Sprintf(`
You are a sell-side equity analyst covering Japanese listed companies.
Analyze the attached disclosure documents for ticker %s and produce a
concise assessment for a retail investor audience.

Attached documents:
%s

Respond with a single JSON object and nothing else:
{
  "overview": "3-5 sentence plain-language summary of the release",
  "highlights": ["up to 5 positive takeaways"],
  "lowlights": ["up to 5 concerns or risks"],
  "key_metrics": {"metric name": "value with unit, e.g. 売上高: 1,234億円 (+12%% YoY)"}
}
`, ticker, formatDocumentList(docs))
}

// BuildCustomAnalysisPrompt builds the prompt for a subscriber-specific
// analysis driven by the subscriber's own instructions.
func BuildCustomAnalysisPrompt(ticker, customPrompt string, docs []dto.PDFDocument) string {
	return fmt.Sprintf(`
You are a sell-side equity analyst covering Japanese listed companies.
Analyze the attached disclosure documents for ticker %s.

Attached documents:
%s

The reader has given these standing instructions for every analysis you
write for them. Follow the instructions; when they conflict with the
response format below, the response format wins.

Instructions:
%s

Respond with a single JSON object and nothing else:
{
  "analysis": "the analysis text, shaped by the instructions above",
  "key_points": ["up to 5 takeaways the reader should not miss"]
}
`, ticker, formatDocumentList(docs), customPrompt)
}

func formatDocumentList(docs []dto.PDFDocument) string {
	var b strings.Builder
	for i, doc := range docs {
		b.WriteString(fmt.Sprintf("%d. [%s] %s (%d pages)\n", i+1, doc.DocumentType, doc.Title, doc.Pages))
	}
	return b.String()
}
