package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/entity"
)

type CalendarRepository interface {
	Create(ctx context.Context, ev *entity.CalendarEvent) error
	GetByDocumentID(ctx context.Context, docID uuid.UUID) ([]entity.CalendarEvent, error)
	GetAll(ctx context.Context) ([]entity.CalendarEvent, error)
}

type calendarRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCalendarRepository(db *gorm.DB, logger *slog.Logger) CalendarRepository {
	return &calendarRepo{db: db, logger: logger}
}

func (r *calendarRepo) Create(ctx context.Context, ev *entity.CalendarEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		r.logger.Error("failed to create calendar event", "document_id", ev.DocumentID, "date", ev.Date, "error", err)
		return common.WrapError(common.ErrPersistence, err.Error())
	}
	return nil
}

func (r *calendarRepo) GetByDocumentID(ctx context.Context, docID uuid.UUID) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("date").
		Find(&events).Error
	if err != nil {
		r.logger.Error("failed to get calendar events", "document_id", docID, "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return events, nil
}

func (r *calendarRepo) GetAll(ctx context.Context) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	if err := r.db.WithContext(ctx).Order("date").Find(&events).Error; err != nil {
		r.logger.Error("failed to list calendar events", "error", err)
		return nil, common.WrapError(common.ErrPersistence, err.Error())
	}
	return events, nil
}
