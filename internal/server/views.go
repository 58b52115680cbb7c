package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

// documentView is the detail projection: the document joined with its
// versions, the latest version's analysis and its spelling findings.
type documentView struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	UniqueHash  string        `json:"unique_hash"`
	RootPath    string        `json:"root_path"`
	CreatedAt   time.Time     `json:"created_at"`
	Versions    []versionView `json:"versions"`

	Entities       *entity.Entities `json:"entities,omitempty"`
	EntityCounts   map[string]int   `json:"entity_counts,omitempty"`
	SpellingErrors []string         `json:"spelling_errors"`
}

type versionView struct {
	ID         uuid.UUID `json:"id"`
	VersionTag string    `json:"version_tag"`
	FilePath   string    `json:"file_path"`
	FileHash   string    `json:"file_hash"`
	Author     string    `json:"author,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	SizeMB     float64   `json:"size_mb"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Server) documentView(ctx context.Context, id uuid.UUID) (*documentView, error) {
	doc, err := s.cache.DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	versions, err := s.cache.VersionsByDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &documentView{
		ID:             doc.ID,
		Title:          doc.Title,
		Type:           doc.Type,
		Description:    doc.Description,
		UniqueHash:     doc.UniqueHash,
		RootPath:       doc.RootPath,
		CreatedAt:      doc.CreatedAt,
		Versions:       make([]versionView, 0, len(versions)),
		SpellingErrors: []string{},
	}

	authorNames := make(map[uuid.UUID]string)
	for _, v := range versions {
		vv := versionView{
			ID:         v.ID,
			VersionTag: v.VersionTag,
			FilePath:   v.FilePath,
			FileHash:   v.FileHash,
			Comment:    v.Comment,
			SizeMB:     v.SizeMB,
			UpdatedAt:  v.UpdatedAt,
		}
		if v.AuthorID != nil {
			name, ok := authorNames[*v.AuthorID]
			if !ok {
				if author, err := s.authors.GetByID(ctx, *v.AuthorID); err == nil {
					name = author.FullName()
				}
				authorNames[*v.AuthorID] = name
			}
			vv.Author = name
		}
		view.Versions = append(view.Versions, vv)
	}

	latest, err := s.cache.LatestVersion(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	if ac, err := s.cache.AnalyzedByVersion(ctx, latest.ID); err == nil {
		view.Entities = &ac.Entities
		view.EntityCounts = ac.Entities.Counts()
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if se, err := s.cache.SpellingByVersion(ctx, latest.ID); err == nil {
		for _, row := range se {
			view.SpellingErrors = append(view.SpellingErrors, row.Word)
		}
	}
	return view, nil
}
