package extract

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// withPDFRecover shields callers from the parser, which panics on malformed
// xref tables instead of returning an error.
func withPDFRecover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	return fn()
}

// pdfTextLayer reads the embedded text layer of a PDF in page order.
func pdfTextLayer(path string) (string, error) {
	var text string
	err := withPDFRecover(func() error {
		f, r, err := pdf.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		rd, err := r.GetPlainText()
		if err != nil {
			return err
		}
		b, err := io.ReadAll(rd)
		if err != nil {
			return err
		}
		text = string(b)
		return nil
	})
	return text, err
}
