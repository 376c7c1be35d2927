package statement

import (
	"fmt"

	"github.com/dslipak/pdf"
)

// ExtractPDFPages pulls the plain text of every page of the PDF at path.
// It is the only place the PDF decoding library is touched; everything
// downstream works on page strings.
func ExtractPDFPages(path string) ([]string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
