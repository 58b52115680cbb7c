package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/legajo/docsync/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	documents repository.DocumentRepository
	versions  repository.VersionRepository
	calendar  repository.CalendarRepository
	logger    *slog.Logger
}

func NewService(documents repository.DocumentRepository, versions repository.VersionRepository, calendar repository.CalendarRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{documents: documents, versions: versions, calendar: calendar, logger: logger}
}

// ExportCalendarXLSX returns an XLSX workbook (as bytes) with every legal
// calendar event, joined to its document title.
func (s *Service) ExportCalendarXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	events, err := s.calendar.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Calendario"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Fecha", "Evento", "Documento", "Ruta"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// Titles are resolved once per document, not per event.
	titles := make(map[uuid.UUID]*struct{ title, path string })

	row := 2
	for _, ev := range events {
		info, ok := titles[ev.DocumentID]
		if !ok {
			info = &struct{ title, path string }{}
			if doc, err := s.documents.GetByID(ctx, ev.DocumentID); err == nil {
				info.title = doc.Title
				info.path = doc.RootPath
			}
			titles[ev.DocumentID] = info
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, ev.Date)
		write(2, truncate(ev.Event, 140))
		write(3, info.title)
		write(4, info.path)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "C", 36)
	_ = f.SetColWidth(sheet, "D", "D", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.calendar.ok",
		"rows", len(events),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportInventoryXLSX returns an XLSX workbook listing every document with
// its latest version.
func (s *Service) ExportInventoryXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	docs, err := s.documents.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documentos"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Título", "Tipo", "Versiones", "Última actualización", "Tamaño (MB)", "Ruta"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, doc := range docs {
		versions, err := s.versions.GetAllByDocumentID(ctx, doc.ID)
		if err != nil {
			return nil, err
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, doc.Title)
		write(2, doc.Type)
		write(3, len(versions))
		if len(versions) > 0 {
			write(4, versions[0].UpdatedAt.Format("2006-01-02 15:04:05"))
			write(5, versions[0].SizeMB)
		}
		write(6, doc.RootPath)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "D", 20)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.inventory.ok",
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
