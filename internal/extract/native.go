package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the embedded text layer of a PDF page by page.
type PDFText struct{}

// Text returns the text of every page joined by blank lines, and the page count.
func (PDFText) Text(data []byte) (text string, pages int, err error) {
	r, err := openPDF(data)
	if err != nil {
		return "", 0, err
	}
	defer recoverPDF(&err)

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			return "", pages, fmt.Errorf("pdf page %d: %w", i, perr)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), pages, nil
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty pdf")
	}
	defer recoverPDF(&err)
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

// recoverPDF turns a panic from the PDF parser into an error; the parser
// panics on some malformed object streams.
func recoverPDF(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("malformed pdf: %v", rec)
	}
}
