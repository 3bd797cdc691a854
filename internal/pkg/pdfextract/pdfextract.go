package pdfextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and extracts plain text from the
// first maxPages pages (all pages when maxPages <= 0). Returns empty string
// and nil error if the PDF has no extractable text.
func ExtractText(r io.Reader, maxPages int) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}

	total := pdfReader.NumPage()
	if maxPages > 0 && maxPages < total {
		total = maxPages
	}

	var texts []string
	for i := 1; i <= total; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken page should not lose the rest of the document.
			continue
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, "\n\n"), nil
}
