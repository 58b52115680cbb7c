package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/legajo/docsync/constants"
	"github.com/legajo/docsync/internal/common"
)

// minTextLayerChars is the scanned-PDF decision threshold: fewer
// non-whitespace characters than this in the text layer means the document
// is treated as scanned and OCRed page by page.
const minTextLayerChars = 10

// OCRMarker tags OCR-derived text appended to DOCX output so downstream
// consumers know it is lower-confidence.
const OCRMarker = "[OCR]"

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "spa"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit
}

// TextExtractor pulls full text out of the supported formats, deciding per
// file whether OCR is needed.
type TextExtractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTextExtractor(cfg Config, logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &TextExtractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract returns the file's full text, page/paragraph order preserved.
// Failures are reported as ErrExtractionFailed so the sync walk can skip
// the file and continue.
func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		return e.extractPDF(ctx, path)
	case constants.DOCX, constants.DOC:
		// Legacy .doc goes through the same reader; real OLE2 files fail
		// there and are skipped, matching prior behavior.
		return e.extractDocx(ctx, path)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (e *TextExtractor) extractPDF(ctx context.Context, path string) (string, error) {
	text, err := pdfTextLayer(path)
	if err == nil && !isScanned(text) {
		return text, nil
	}
	if err != nil {
		e.logger.Debug("pdf text layer unreadable, assuming scanned", "path", path, "error", err)
	}

	ocrText, err := e.ocrPDF(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: ocr %s: %v", common.ErrExtractionFailed, path, err)
	}
	return ocrText, nil
}

// isScanned reports whether the extracted text layer is too thin to trust.
func isScanned(text string) bool {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
			if n >= minTextLayerChars {
				return false
			}
		}
	}
	return true
}

// ocrPDF renders each page to an image and runs OCR per page, concatenating
// results with a page break marker.
func (e *TextExtractor) ocrPDF(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docsync-pp-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %v (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			e.logger.Warn("page ocr failed", "image", img, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func (e *TextExtractor) extractDocx(ctx context.Context, path string) (string, error) {
	text, hasImages, err := readDocxText(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrExtractionFailed, path, err)
	}
	if !hasImages {
		return text, nil
	}

	ocrText, err := e.ocrDocxImages(ctx, path)
	if err != nil {
		// Embedded-image OCR is additive; keep the paragraph text.
		e.logger.Warn("docx image ocr failed", "path", path, "error", err)
		return text, nil
	}
	if ocrText != "" {
		text = text + "\n" + OCRMarker + "\n" + ocrText
	}
	return text, nil
}

// ocrDocxImages extracts word/media images into a temp dir and OCRs each.
func (e *TextExtractor) ocrDocxImages(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	tmpDir, err := os.MkdirTemp("", "docsync-media-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	var parts []string
	for _, f := range docxMediaEntries(&zr.Reader) {
		dst := filepath.Join(tmpDir, filepath.Base(f.Name))
		if err := copyZipEntry(f, dst); err != nil {
			e.logger.Warn("embedded image extract failed", "entry", f.Name, "error", err)
			continue
		}
		txt, err := e.tesseractOCR(ctx, dst)
		if err != nil {
			e.logger.Warn("embedded image ocr failed", "entry", f.Name, "error", err)
			continue
		}
		if strings.TrimSpace(txt) != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (e *TextExtractor) tesseractOCR(ctx context.Context, imgPath string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %v (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func copyZipEntry(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, rc)
	return err
}
