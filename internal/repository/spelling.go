package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

type SpellingErrorRepository interface {
	GetByVersionID(ctx context.Context, versionID uuid.UUID) ([]entity.SpellingError, error)
	ReplaceForVersion(ctx context.Context, versionID uuid.UUID, words []string) error
}

type spellingRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewSpellingErrorRepository(db *gorm.DB, logger *slog.Logger) SpellingErrorRepository {
	return &spellingRepo{db: db, logger: logger}
}

func (r *spellingRepo) GetByVersionID(ctx context.Context, versionID uuid.UUID) ([]entity.SpellingError, error) {
	var errs []entity.SpellingError
	err := r.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("word").
		Find(&errs).Error
	if err != nil {
		r.logger.Error("failed to get spelling errors", "version_id", versionID, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return errs, nil
}

// ReplaceForVersion swaps the stored misspellings for a version in one
// transaction, keeping re-runs idempotent.
func (r *spellingRepo) ReplaceForVersion(ctx context.Context, versionID uuid.UUID, words []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version_id = ?", versionID).Delete(&entity.SpellingError{}).Error; err != nil {
			return err
		}
		for _, w := range words {
			rec := entity.SpellingError{
				ID:        uuid.New(),
				VersionID: versionID,
				Word:      w,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to replace spelling errors", "version_id", versionID, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}
