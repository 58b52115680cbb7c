// Package sync walks a directory of legal documents and reconciles the
// store with what is on disk: new documents, new versions of known
// documents, analysis and calendar events.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legajo/docsync/constants"
	"github.com/legajo/docsync/internal/cache"
	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
	"github.com/legajo/docsync/internal/hash"
	"github.com/legajo/docsync/internal/repository"
	"github.com/legajo/docsync/internal/storage"
)

// MetadataExtractor reads document metadata from a file.
type MetadataExtractor interface {
	Extract(path string) (entity.Metadata, error)
}

// TextExtractor recovers the full text of a file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// EntityExtractor analyzes text into structured entities.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (*entity.Entities, error)
}

// SpellChecker finds misspelled words in text.
type SpellChecker interface {
	Check(text string) []string
}

// Stats counts per-file outcomes of one sync run.
type Stats struct {
	Scanned   int `json:"scanned"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Result is the outcome of a sync run.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stats   Stats  `json:"stats"`
}

// Engine drives the per-file sync state machine.
type Engine struct {
	documents repository.DocumentRepository
	versions  repository.VersionRepository
	authors   repository.AuthorRepository
	analyzed  repository.AnalyzedContentRepository
	spelling  repository.SpellingErrorRepository
	calendar  repository.CalendarRepository

	metadata MetadataExtractor
	text     TextExtractor
	entities EntityExtractor
	spell    SpellChecker

	copier *storage.Copier
	cache  *cache.Layer
	logger *slog.Logger
}

type Config struct {
	Documents repository.DocumentRepository
	Versions  repository.VersionRepository
	Authors   repository.AuthorRepository
	Analyzed  repository.AnalyzedContentRepository
	Spelling  repository.SpellingErrorRepository
	Calendar  repository.CalendarRepository

	Metadata MetadataExtractor
	Text     TextExtractor
	Entities EntityExtractor
	Spell    SpellChecker

	Copier *storage.Copier
	Cache  *cache.Layer
	Logger *slog.Logger
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		documents: cfg.Documents,
		versions:  cfg.Versions,
		authors:   cfg.Authors,
		analyzed:  cfg.Analyzed,
		spelling:  cfg.Spelling,
		calendar:  cfg.Calendar,
		metadata:  cfg.Metadata,
		text:      cfg.Text,
		entities:  cfg.Entities,
		spell:     cfg.Spell,
		copier:    cfg.Copier,
		cache:     cfg.Cache,
		logger:    cfg.Logger.With(slog.String("component", "sync")),
	}
}

// Run walks root and syncs every supported file. Hidden entries and
// unsupported extensions are skipped silently; a file that fails is
// logged, counted and does not stop the walk.
func (e *Engine) Run(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	stats := Stats{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("walk error", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			// Never ingest the managed copy tree: each copy carries a new
			// path and would register as a fresh document on every run.
			if e.isManagedRoot(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(name))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}

		stats.Scanned++
		outcome, err := e.syncFile(ctx, path, ext)
		if err != nil {
			stats.Failed++
			e.logger.Error("file sync failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		switch outcome {
		case outcomeCreated:
			stats.Created++
		case outcomeUpdated:
			stats.Updated++
		case outcomeUnchanged:
			stats.Unchanged++
		}
		return nil
	})
	if walkErr != nil {
		return &Result{
			Success: false,
			Message: fmt.Sprintf("sync aborted: %v", walkErr),
			Stats:   stats,
		}, walkErr
	}

	e.logger.Info("sync finished",
		slog.String("root", root),
		slog.Int("scanned", stats.Scanned),
		slog.Int("created", stats.Created),
		slog.Int("updated", stats.Updated),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("failed", stats.Failed),
		slog.Duration("elapsed", time.Since(start)))

	return &Result{
		Success: stats.Failed == 0,
		Message: fmt.Sprintf("%d files scanned, %d new, %d updated, %d unchanged, %d failed",
			stats.Scanned, stats.Created, stats.Updated, stats.Unchanged, stats.Failed),
		Stats: stats,
	}, nil
}

func (e *Engine) isManagedRoot(path string) bool {
	managed, err := filepath.Abs(e.copier.Root())
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == managed
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeCreated
	outcomeUpdated
)

// syncFile runs the state machine for one file: identify the document,
// detect whether its content changed, and when it did, store a new version
// with its analysis.
func (e *Engine) syncFile(ctx context.Context, path, ext string) (outcome, error) {
	contentHash, err := hash.ContentHash(path)
	if err != nil {
		return 0, fmt.Errorf("content hash: %w", err)
	}

	meta, err := e.metadata.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("metadata: %w", err)
	}

	uniqueHash := hash.IdentityHash(path, meta.Created, contentHash)

	doc, created, err := e.resolveDocument(ctx, path, ext, uniqueHash, meta)
	if err != nil {
		return 0, err
	}

	if !created {
		latest, err := e.versions.GetLatestByDocumentID(ctx, doc.ID)
		if err == nil && latest.FileHash == contentHash {
			return outcomeUnchanged, nil
		}
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return 0, err
		}
	}

	version, err := e.storeVersion(ctx, doc, path, contentHash, meta)
	if err != nil {
		return 0, err
	}

	if err := e.analyze(ctx, doc, version); err != nil {
		return 0, err
	}

	if created {
		return outcomeCreated, nil
	}
	return outcomeUpdated, nil
}

func (e *Engine) resolveDocument(ctx context.Context, path, ext, uniqueHash string, meta entity.Metadata) (*entity.Document, bool, error) {
	doc, err := e.documents.GetByUniqueHash(ctx, uniqueHash)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	doc = &entity.Document{
		ID:          uuid.New(),
		Title:       title,
		Description: meta.Description,
		Type:        constants.MapExtToFormat(ext),
		UniqueHash:  uniqueHash,
		RootPath:    path,
		CreatedAt:   time.Now(),
	}
	if err := e.documents.Create(ctx, doc); err != nil {
		return nil, false, err
	}
	e.cache.PutDocument(*doc)
	e.logger.Info("document registered",
		slog.String("id", doc.ID.String()),
		slog.String("title", doc.Title))
	return doc, true, nil
}

func (e *Engine) storeVersion(ctx context.Context, doc *entity.Document, path, contentHash string, meta entity.Metadata) (*entity.Version, error) {
	tag := e.copier.NextTag()
	dst, err := e.copier.CopyVersion(doc.ID, tag, path)
	if err != nil {
		return nil, err
	}

	version := &entity.Version{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		VersionTag: tag,
		FilePath:   dst,
		FileHash:   contentHash,
		Comment:    "Sincronización automática",
		SizeMB:     meta.SizeMB,
		UpdatedAt:  time.Now(),
	}

	if meta.Author != "" {
		author, err := e.authors.GetOrCreate(ctx, meta.Author)
		if err != nil && !errors.Is(err, common.ErrInvalidInput) {
			return nil, err
		}
		if author != nil {
			version.AuthorID = &author.ID
		}
	}

	if err := e.versions.Add(ctx, version); err != nil {
		return nil, err
	}
	e.cache.PutVersion(*version)
	return version, nil
}

// analyze extracts text, records misspellings and entities, and creates a
// calendar event per valid date found. An unavailable model backend is
// tolerated: the version stays stored and gets analyzed on a later run.
func (e *Engine) analyze(ctx context.Context, doc *entity.Document, version *entity.Version) error {
	text, err := e.text.Extract(ctx, version.FilePath)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			e.logger.Debug("text extraction unsupported", slog.String("path", version.FilePath))
			return nil
		}
		return fmt.Errorf("text extraction: %w", err)
	}

	misspelled := e.spell.Check(text)
	if err := e.spelling.ReplaceForVersion(ctx, version.ID, misspelled); err != nil {
		return err
	}

	ents, err := e.entities.Extract(ctx, text)
	if err != nil {
		if errors.Is(err, common.ErrModelUnavailable) {
			e.logger.Warn("entity extraction unavailable",
				slog.String("version_id", version.ID.String()))
			empty := entity.NewEntities()
			ents = &empty
		} else {
			return fmt.Errorf("entity extraction: %w", err)
		}
	}

	ac := &entity.AnalyzedContent{
		ID:        uuid.New(),
		VersionID: version.ID,
		FullText:  text,
		Entities:  *ents,
	}
	if err := e.analyzed.Upsert(ctx, ac); err != nil {
		return err
	}
	e.cache.PutAnalyzed(*ac)

	spellingRows, err := e.spelling.GetByVersionID(ctx, version.ID)
	if err == nil {
		e.cache.PutSpelling(version.ID, spellingRows)
	}

	for _, d := range ents.Fechas {
		if !d.IsValid {
			continue
		}
		// Dates carry no description of their own; derive one from the
		// document unless the extractor supplied something.
		description := d.Evento
		if description == "" {
			description = "Evento generado automáticamente: " + doc.Title
		}
		ev := &entity.CalendarEvent{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Event:      description,
			Date:       d.Fecha,
		}
		if err := e.calendar.Create(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
