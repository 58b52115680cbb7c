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

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByUniqueHash(ctx context.Context, hash string) (*entity.Document, error)
	GetAll(ctx context.Context) ([]entity.Document, error)
	Create(ctx context.Context, doc *entity.Document) error
}

type documentRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDocumentRepository(db *gorm.DB, logger *slog.Logger) DocumentRepository {
	return &documentRepo{db: db, logger: logger}
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var doc entity.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document", "id", id, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &doc, nil
}

func (r *documentRepo) GetByUniqueHash(ctx context.Context, hash string) (*entity.Document, error) {
	var doc entity.Document
	err := r.db.WithContext(ctx).First(&doc, "unique_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document by hash", "unique_hash", hash, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &doc, nil
}

func (r *documentRepo) GetAll(ctx context.Context) ([]entity.Document, error) {
	var docs []entity.Document
	if err := r.db.WithContext(ctx).Order("created_at").Find(&docs).Error; err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return docs, nil
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.logger.Error("failed to create document", "title", doc.Title, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}
