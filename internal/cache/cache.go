// Package cache keeps a read-through copy of the document store in memory
// so the HTTP surface answers without touching SQLite on the hot path.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
	"github.com/legajo/docsync/internal/repository"
)

// Suggester produces ranked corrections for a misspelled word. A full
// rebuild uses it to re-derive the suggestion partition from the stored
// spelling rows.
type Suggester interface {
	Suggestions(word string) []string
}

// Layer fronts the repositories. Reads fall through to the store on a miss
// and populate the cache; the sync engine writes through after each
// mutation, so a warm cache stays consistent with the database.
type Layer struct {
	documents repository.DocumentRepository
	versions  repository.VersionRepository
	analyzed  repository.AnalyzedContentRepository
	spelling  repository.SpellingErrorRepository
	suggester Suggester
	logger    *slog.Logger

	mu                sync.RWMutex
	docsByID          map[uuid.UUID]entity.Document
	docsByHash        map[string]uuid.UUID
	versionsByDoc     map[uuid.UUID][]entity.Version
	analyzedByVersion map[uuid.UUID]entity.AnalyzedContent
	spellingByVersion map[uuid.UUID][]entity.SpellingError
	suggestions       map[string][]string
}

// Stats reports cache partition sizes.
type Stats struct {
	Documents   int `json:"documents"`
	Versions    int `json:"versions"`
	Analyzed    int `json:"analyzed"`
	Spelling    int `json:"spelling"`
	Suggestions int `json:"suggestions"`
}

func NewLayer(
	documents repository.DocumentRepository,
	versions repository.VersionRepository,
	analyzed repository.AnalyzedContentRepository,
	spelling repository.SpellingErrorRepository,
	suggester Suggester,
	logger *slog.Logger,
) *Layer {
	l := &Layer{
		documents: documents,
		versions:  versions,
		analyzed:  analyzed,
		spelling:  spelling,
		suggester: suggester,
		logger:    logger.With(slog.String("component", "cache")),
	}
	l.reset()
	return l
}

// reset reinitializes every partition. Callers hold the write lock or have
// exclusive access.
func (l *Layer) reset() {
	l.docsByID = make(map[uuid.UUID]entity.Document)
	l.docsByHash = make(map[string]uuid.UUID)
	l.versionsByDoc = make(map[uuid.UUID][]entity.Version)
	l.analyzedByVersion = make(map[uuid.UUID]entity.AnalyzedContent)
	l.spellingByVersion = make(map[uuid.UUID][]entity.SpellingError)
	l.suggestions = make(map[string][]string)
}

// RebuildAll repopulates every partition from the store. On any failure
// the cache is cleared rather than left half-filled.
func (l *Layer) RebuildAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()

	docs, err := l.documents.GetAll(ctx)
	if err != nil {
		return l.rebuildFailed("documents", err)
	}
	for _, doc := range docs {
		l.docsByID[doc.ID] = doc
		l.docsByHash[doc.UniqueHash] = doc.ID

		versions, err := l.versions.GetAllByDocumentID(ctx, doc.ID)
		if err != nil {
			return l.rebuildFailed("versions", err)
		}
		l.versionsByDoc[doc.ID] = versions

		for _, v := range versions {
			if ac, err := l.analyzed.GetByVersionID(ctx, v.ID); err == nil {
				l.analyzedByVersion[v.ID] = *ac
			} else if !errors.Is(err, common.ErrNotFound) {
				return l.rebuildFailed("analyzed content", err)
			}
			se, err := l.spelling.GetByVersionID(ctx, v.ID)
			if err != nil {
				return l.rebuildFailed("spelling errors", err)
			}
			l.spellingByVersion[v.ID] = se

			if l.suggester == nil {
				continue
			}
			for _, row := range se {
				if _, ok := l.suggestions[row.Word]; !ok {
					l.suggestions[row.Word] = l.suggester.Suggestions(row.Word)
				}
			}
		}
	}

	l.logger.Info("cache rebuilt",
		slog.Int("documents", len(l.docsByID)),
		slog.Int("analyzed", len(l.analyzedByVersion)))
	return nil
}

func (l *Layer) rebuildFailed(part string, err error) error {
	l.reset()
	l.logger.Error("cache rebuild failed", "partition", part, "error", err)
	return common.WrapError(common.ErrCacheInconsistency, "rebuild "+part+": "+err.Error())
}

func (l *Layer) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	nv := 0
	for _, vs := range l.versionsByDoc {
		nv += len(vs)
	}
	return Stats{
		Documents:   len(l.docsByID),
		Versions:    nv,
		Analyzed:    len(l.analyzedByVersion),
		Spelling:    len(l.spellingByVersion),
		Suggestions: len(l.suggestions),
	}
}

// DocumentByHash looks up a document by identity hash, falling through to
// the store on a miss.
func (l *Layer) DocumentByHash(ctx context.Context, hash string) (*entity.Document, error) {
	l.mu.RLock()
	if id, ok := l.docsByHash[hash]; ok {
		doc := l.docsByID[id]
		l.mu.RUnlock()
		return &doc, nil
	}
	l.mu.RUnlock()

	doc, err := l.documents.GetByUniqueHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	l.PutDocument(*doc)
	return doc, nil
}

func (l *Layer) DocumentByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	l.mu.RLock()
	if doc, ok := l.docsByID[id]; ok {
		l.mu.RUnlock()
		return &doc, nil
	}
	l.mu.RUnlock()

	doc, err := l.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.PutDocument(*doc)
	return doc, nil
}

// Documents returns the cached document set. An empty cache falls through
// to the store and repopulates.
func (l *Layer) Documents(ctx context.Context) ([]entity.Document, error) {
	l.mu.RLock()
	if len(l.docsByID) > 0 {
		out := make([]entity.Document, 0, len(l.docsByID))
		for _, doc := range l.docsByID {
			out = append(out, doc)
		}
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()

	docs, err := l.documents.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	for _, doc := range docs {
		l.docsByID[doc.ID] = doc
		l.docsByHash[doc.UniqueHash] = doc.ID
	}
	l.mu.Unlock()
	return docs, nil
}

func (l *Layer) PutDocument(doc entity.Document) {
	l.mu.Lock()
	l.docsByID[doc.ID] = doc
	l.docsByHash[doc.UniqueHash] = doc.ID
	l.mu.Unlock()
}

// VersionsByDocument returns a document's versions, newest first.
func (l *Layer) VersionsByDocument(ctx context.Context, docID uuid.UUID) ([]entity.Version, error) {
	l.mu.RLock()
	if vs, ok := l.versionsByDoc[docID]; ok {
		out := make([]entity.Version, len(vs))
		copy(out, vs)
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()

	vs, err := l.versions.GetAllByDocumentID(ctx, docID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.versionsByDoc[docID] = vs
	l.mu.Unlock()
	return vs, nil
}

func (l *Layer) LatestVersion(ctx context.Context, docID uuid.UUID) (*entity.Version, error) {
	vs, err := l.VersionsByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, common.ErrNotFound
	}
	latest := vs[0]
	for _, v := range vs[1:] {
		if v.UpdatedAt.After(latest.UpdatedAt) {
			latest = v
		}
	}
	return &latest, nil
}

// PutVersion prepends a version to its document's list.
func (l *Layer) PutVersion(v entity.Version) {
	l.mu.Lock()
	l.versionsByDoc[v.DocumentID] = append([]entity.Version{v}, l.versionsByDoc[v.DocumentID]...)
	l.mu.Unlock()
}

func (l *Layer) AnalyzedByVersion(ctx context.Context, versionID uuid.UUID) (*entity.AnalyzedContent, error) {
	l.mu.RLock()
	if ac, ok := l.analyzedByVersion[versionID]; ok {
		l.mu.RUnlock()
		return &ac, nil
	}
	l.mu.RUnlock()

	ac, err := l.analyzed.GetByVersionID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.analyzedByVersion[versionID] = *ac
	l.mu.Unlock()
	return ac, nil
}

func (l *Layer) PutAnalyzed(ac entity.AnalyzedContent) {
	l.mu.Lock()
	l.analyzedByVersion[ac.VersionID] = ac
	l.mu.Unlock()
}

func (l *Layer) SpellingByVersion(ctx context.Context, versionID uuid.UUID) ([]entity.SpellingError, error) {
	l.mu.RLock()
	if se, ok := l.spellingByVersion[versionID]; ok {
		l.mu.RUnlock()
		return se, nil
	}
	l.mu.RUnlock()

	se, err := l.spelling.GetByVersionID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.spellingByVersion[versionID] = se
	l.mu.Unlock()
	return se, nil
}

func (l *Layer) PutSpelling(versionID uuid.UUID, errs []entity.SpellingError) {
	l.mu.Lock()
	l.spellingByVersion[versionID] = errs
	l.mu.Unlock()
}

// Suggestions memoizes spell suggestions per misspelled word.
func (l *Layer) Suggestions(word string) ([]string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.suggestions[word]
	return s, ok
}

func (l *Layer) PutSuggestions(word string, s []string) {
	l.mu.Lock()
	l.suggestions[word] = s
	l.mu.Unlock()
}
