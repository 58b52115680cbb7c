package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

type VersionRepository interface {
	GetByHash(ctx context.Context, fileHash string) (*entity.Version, error)
	GetLatestByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.Version, error)
	GetAllByDocumentID(ctx context.Context, docID uuid.UUID) ([]entity.Version, error)
	GetAll(ctx context.Context) ([]entity.Version, error)
	Add(ctx context.Context, v *entity.Version) error
}

type versionRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewVersionRepository(db *gorm.DB, logger *slog.Logger) VersionRepository {
	return &versionRepo{db: db, logger: logger}
}

func (r *versionRepo) GetByHash(ctx context.Context, fileHash string) (*entity.Version, error) {
	var v entity.Version
	err := r.db.WithContext(ctx).First(&v, "file_hash = ?", fileHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get version by hash", "file_hash", fileHash, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &v, nil
}

func (r *versionRepo) GetLatestByDocumentID(ctx context.Context, docID uuid.UUID) (*entity.Version, error) {
	var v entity.Version
	err := r.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("updated_at DESC").
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get latest version", "document_id", docID, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &v, nil
}

func (r *versionRepo) GetAllByDocumentID(ctx context.Context, docID uuid.UUID) ([]entity.Version, error) {
	var versions []entity.Version
	err := r.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("updated_at DESC").
		Find(&versions).Error
	if err != nil {
		r.logger.Error("failed to list versions", "document_id", docID, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return versions, nil
}

func (r *versionRepo) GetAll(ctx context.Context) ([]entity.Version, error) {
	var versions []entity.Version
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&versions).Error; err != nil {
		r.logger.Error("failed to list all versions", "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return versions, nil
}

func (r *versionRepo) Add(ctx context.Context, v *entity.Version) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		r.logger.Error("failed to add version", "document_id", v.DocumentID, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}
