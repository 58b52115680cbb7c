package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

type AnalyzedContentRepository interface {
	GetByVersionID(ctx context.Context, versionID uuid.UUID) (*entity.AnalyzedContent, error)
	Upsert(ctx context.Context, ac *entity.AnalyzedContent) error
}

type analyzedRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewAnalyzedContentRepository(db *gorm.DB, logger *slog.Logger) AnalyzedContentRepository {
	return &analyzedRepo{db: db, logger: logger}
}

func (r *analyzedRepo) GetByVersionID(ctx context.Context, versionID uuid.UUID) (*entity.AnalyzedContent, error) {
	var ac entity.AnalyzedContent
	err := r.db.WithContext(ctx).First(&ac, "version_id = ?", versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get analyzed content", "version_id", versionID, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &ac, nil
}

// Upsert replaces the analysis for a version in place, so re-running a
// sync never duplicates rows.
func (r *analyzedRepo) Upsert(ctx context.Context, ac *entity.AnalyzedContent) error {
	if ac.ID == uuid.Nil {
		ac.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "version_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_text", "entities"}),
		}).
		Create(ac).Error
	if err != nil {
		r.logger.Error("failed to upsert analyzed content", "version_id", ac.VersionID, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}
