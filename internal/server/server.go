// Package server exposes the document store and sync engine over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/legajo/docsync/internal/async"
	"github.com/legajo/docsync/internal/cache"
	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/export"
	"github.com/legajo/docsync/internal/repository"
	"github.com/legajo/docsync/internal/spellcheck"
	"github.com/legajo/docsync/internal/sync"
)

type Server struct {
	app      *fiber.App
	engine   *sync.Engine
	runner   *async.Runner
	cache    *cache.Layer
	authors  repository.AuthorRepository
	calendar repository.CalendarRepository
	export   *export.Service
	spell    *spellcheck.Checker
	root     string
	logger   *slog.Logger
}

type Config struct {
	Engine       *sync.Engine
	Runner       *async.Runner
	Cache        *cache.Layer
	Authors      repository.AuthorRepository
	Calendar     repository.CalendarRepository
	Export       *export.Service
	Spell        *spellcheck.Checker
	DefaultRoot  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		engine:   cfg.Engine,
		runner:   cfg.Runner,
		cache:    cfg.Cache,
		authors:  cfg.Authors,
		calendar: cfg.Calendar,
		export:   cfg.Export,
		spell:    cfg.Spell,
		root:     cfg.DefaultRoot,
		logger:   cfg.Logger.With(slog.String("component", "server")),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "docsync",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: s.errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.requestID)

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/cache/stats", s.handleCacheStats)

	s.app.Post("/sync", s.handleSync)
	s.app.Get("/sync/status", s.handleSyncStatus)

	s.app.Get("/documents", s.handleListDocuments)
	s.app.Get("/documents/:id", s.handleGetDocument)
	s.app.Get("/documents/:id/calendar", s.handleDocumentCalendar)

	s.app.Get("/spelling/suggestions", s.handleSuggestions)

	s.app.Get("/export/calendar", s.handleExportCalendar)
	s.app.Get("/export/inventory", s.handleExportInventory)
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, common.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		code = fiber.StatusBadRequest
	}
	if code >= 500 {
		s.logger.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// requestID tags every request so handler logs can be correlated.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.SetUserContext(common.WithRequestID(c.UserContext(), id))
	c.Set("X-Request-ID", id)
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleCacheStats(c *fiber.Ctx) error {
	return c.JSON(s.cache.Stats())
}

type syncRequest struct {
	Root  string `json:"root"`
	Async bool   `json:"async"`
}

func (r syncRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Root, validation.Length(0, 4096)),
	)
}

// handleSync triggers a sync run over the requested root, defaulting to
// the configured documents directory. With async=true the run is queued
// and the response returns immediately.
func (s *Server) handleSync(c *fiber.Ctx) error {
	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	root := req.Root
	if root == "" {
		root = s.root
	}

	if req.Async {
		err := s.runner.Enqueue(async.Job{Root: root, SubmittedAt: time.Now()})
		if errors.Is(err, async.ErrBusy) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true, "root": root})
	}

	result, err := s.engine.Run(c.Context(), root)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) handleSyncStatus(c *fiber.Ctx) error {
	return c.JSON(s.runner.Status())
}

// documentSummary is the list-view projection of a document.
type documentSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Description  string    `json:"description,omitempty"`
	RootPath     string    `json:"root_path"`
	CreatedAt    time.Time `json:"created_at"`
	VersionCount int       `json:"version_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.cache.Documents(c.Context())
	if err != nil {
		return err
	}

	out := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summary := documentSummary{
			ID:          doc.ID,
			Title:       doc.Title,
			Type:        doc.Type,
			Description: doc.Description,
			RootPath:    doc.RootPath,
			CreatedAt:   doc.CreatedAt,
		}
		if versions, err := s.cache.VersionsByDocument(c.Context(), doc.ID); err == nil {
			summary.VersionCount = len(versions)
			for _, v := range versions {
				if v.UpdatedAt.After(summary.UpdatedAt) {
					summary.UpdatedAt = v.UpdatedAt
				}
			}
		}
		out = append(out, summary)
	}
	return c.JSON(out)
}

func (s *Server) handleGetDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	view, err := s.documentView(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) handleDocumentCalendar(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}
	if _, err := s.cache.DocumentByID(c.Context(), id); err != nil {
		return err
	}
	events, err := s.calendar.GetByDocumentID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// handleSuggestions returns ranked corrections for a misspelled word,
// memoized in the cache layer.
func (s *Server) handleSuggestions(c *fiber.Ctx) error {
	word := c.Query("word")
	if word == "" {
		return fiber.NewError(fiber.StatusBadRequest, "word query parameter required")
	}
	if cached, ok := s.cache.Suggestions(word); ok {
		return c.JSON(fiber.Map{"word": word, "suggestions": cached})
	}
	suggestions := s.spell.Suggestions(word)
	s.cache.PutSuggestions(word, suggestions)
	return c.JSON(fiber.Map{"word": word, "suggestions": suggestions})
}

func (s *Server) handleExportCalendar(c *fiber.Ctx) error {
	data, err := s.export.ExportCalendarXLSX(c.Context())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="calendario.xlsx"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(data)
}

func (s *Server) handleExportInventory(c *fiber.Ctx) error {
	data, err := s.export.ExportInventoryXLSX(c.Context())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="documentos.xlsx"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(data)
}
