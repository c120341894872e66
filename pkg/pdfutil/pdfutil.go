package pdfutil

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the number of pages in a PDF held in memory.
func PageCount(data []byte) (int, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	return pdfCtx.PageCount, nil
}

// TrimPages returns the PDF reduced to its first maxPages pages, along with
// the original page count. Documents within the budget come back unchanged.
func TrimPages(data []byte, maxPages int) ([]byte, int, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, 0, err
	}
	if count <= maxPages {
		return data, count, nil
	}

	var buf bytes.Buffer
	selection := []string{fmt.Sprintf("1-%d", maxPages)}
	if err := api.Trim(bytes.NewReader(data), &buf, selection, model.NewDefaultConfiguration()); err != nil {
		return nil, 0, fmt.Errorf("failed to trim PDF to %d pages: %w", maxPages, err)
	}
	return buf.Bytes(), count, nil
}
