package documentloaders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var errNoPDFText = errors.New("no text extracted from PDF")

// extractPDFText returns the plain text of every page, pages separated by a blank line.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF file %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d of %s: %w", i, path, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", errNoPDFText
	}
	return strings.Join(pages, "\n\n"), nil
}
