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

type AuthorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Author, error)
	GetByName(ctx context.Context, firstName, lastName string) (*entity.Author, error)
	Create(ctx context.Context, a *entity.Author) error
	GetOrCreate(ctx context.Context, fullName string) (*entity.Author, error)
}

type authorRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewAuthorRepository(db *gorm.DB, logger *slog.Logger) AuthorRepository {
	return &authorRepo{db: db, logger: logger}
}

func (r *authorRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Author, error) {
	var a entity.Author
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get author", "id", id, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &a, nil
}

func (r *authorRepo) GetByName(ctx context.Context, firstName, lastName string) (*entity.Author, error) {
	var a entity.Author
	err := r.db.WithContext(ctx).
		First(&a, "first_name = ? AND last_name = ?", firstName, lastName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get author by name", "first_name", firstName, "last_name", lastName, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return &a, nil
}

func (r *authorRepo) Create(ctx context.Context, a *entity.Author) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		r.logger.Error("failed to create author", "first_name", a.FirstName, "last_name", a.LastName, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}

// GetOrCreate resolves a document author from the free-form name found in
// file metadata.
func (r *authorRepo) GetOrCreate(ctx context.Context, fullName string) (*entity.Author, error) {
	first, last := entity.SplitFullName(fullName)
	if first == "" {
		return nil, common.ErrInvalidInput
	}

	existing, err := r.GetByName(ctx, first, last)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	a := &entity.Author{ID: uuid.New(), FirstName: first, LastName: last}
	if err := r.Create(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Info("author created", "first_name", first, "last_name", last)
	return a, nil
}
