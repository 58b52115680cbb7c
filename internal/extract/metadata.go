package extract

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/legajo/docsync/constants"
	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

const timeLayout = "2006-01-02 15:04:05"

// rePDFDate matches the raw PDF date encoding D:YYYYMMDDHHMMSS...
var rePDFDate = regexp.MustCompile(`^D:(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})`)

// MetadataExtractor normalizes document metadata across the supported
// formats, filling gaps from the filesystem.
type MetadataExtractor struct {
	logger *slog.Logger
}

func NewMetadataExtractor(logger *slog.Logger) *MetadataExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataExtractor{logger: logger}
}

// Extract returns normalized metadata for the file. Missing titles fall back
// to the filename without extension, missing timestamps to filesystem
// ctime/mtime. Unsupported extensions fail with ErrUnsupportedFormat.
func (m *MetadataExtractor) Extract(path string) (entity.Metadata, error) {
	var meta entity.Metadata
	var err error

	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		meta, err = m.pdfMetadata(path)
	case constants.DOCX:
		meta, err = m.docxMetadata(path)
	case constants.DOC:
		meta, err = m.docMetadata(path)
	default:
		return entity.Metadata{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		// Metadata is best-effort: a parse failure still yields the
		// filesystem fallbacks below.
		m.logger.Warn("metadata parse failed, using filesystem fallbacks", "path", path, "error", err)
		meta = entity.Metadata{}
	}

	applyFallbacks(&meta, path)
	return meta, nil
}

func (m *MetadataExtractor) pdfMetadata(path string) (entity.Metadata, error) {
	var meta entity.Metadata
	err := withPDFRecover(func() error {
		f, r, err := pdf.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info := r.Trailer().Key("Info")
		if info.IsNull() {
			return nil
		}
		meta.Title = pdfInfoString(info, "Title")
		meta.Author = pdfInfoString(info, "Author")
		meta.Description = pdfInfoString(info, "Subject")
		meta.Created = NormalizeDate(pdfInfoString(info, "CreationDate"))
		meta.Modified = NormalizeDate(pdfInfoString(info, "ModDate"))
		return nil
	})
	return meta, err
}

func (m *MetadataExtractor) docxMetadata(path string) (entity.Metadata, error) {
	props, err := readDocxCoreProps(path)
	if err != nil {
		return entity.Metadata{}, err
	}
	return entity.Metadata{
		Title:       props.Title,
		Author:      props.Creator,
		Description: props.Description,
		Created:     NormalizeDate(props.Created),
		Modified:    NormalizeDate(props.Modified),
	}, nil
}

func (m *MetadataExtractor) docMetadata(path string) (entity.Metadata, error) {
	props, err := readOLESummary(path)
	if err != nil {
		return entity.Metadata{}, err
	}
	return entity.Metadata{
		Title:       props.Title,
		Author:      props.Author,
		Description: props.Subject,
		Created:     NormalizeDate(props.Created),
		Modified:    NormalizeDate(props.Modified),
	}, nil
}

func pdfInfoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.RawString())
}

// NormalizeDate converts metadata timestamps to "YYYY-MM-DD HH:MM:SS".
// It understands the raw PDF encoding (D:YYYYMMDDHHMMSS...) and ISO-8601
// variants; anything unparseable yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := rePDFDate.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s %s:%s:%s", m[1], m[2], m[3], m[4], m[5], m[6])
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		timeLayout,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout)
		}
	}
	return ""
}

// TitleFromFilename extracts the filename without extension, the fallback
// document title.
func TitleFromFilename(path string) string {
	name := filepath.Base(path)
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func applyFallbacks(meta *entity.Metadata, path string) {
	if meta.Title == "" {
		meta.Title = TitleFromFilename(path)
	}

	st, err := os.Stat(path)
	if err != nil {
		return
	}
	if meta.Created == "" {
		meta.Created = ctime(st).Format(timeLayout)
	}
	if meta.Modified == "" {
		meta.Modified = st.ModTime().Format(timeLayout)
	}
	meta.SizeMB = math.Round(float64(st.Size())/(1024*1024)*100) / 100
}
