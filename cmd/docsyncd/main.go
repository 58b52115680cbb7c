package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/legajo/docsync/internal/async"
	"github.com/legajo/docsync/internal/cache"
	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/export"
	"github.com/legajo/docsync/internal/extract"
	"github.com/legajo/docsync/internal/ner"
	"github.com/legajo/docsync/internal/repository"
	"github.com/legajo/docsync/internal/server"
	"github.com/legajo/docsync/internal/spellcheck"
	"github.com/legajo/docsync/internal/storage"
	syncer "github.com/legajo/docsync/internal/sync"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.Error("database open failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	documents := repository.NewDocumentRepository(db, logger)
	versions := repository.NewVersionRepository(db, logger)
	authors := repository.NewAuthorRepository(db, logger)
	analyzed := repository.NewAnalyzedContentRepository(db, logger)
	spelling := repository.NewSpellingErrorRepository(db, logger)
	calendar := repository.NewCalendarRepository(db, logger)

	vocab, err := loadVocabulary(cfg, logger)
	if err != nil {
		logger.Error("vocabulary load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	predictors := []ner.Predictor{ner.NewPatternPredictor(vocab)}
	for i, endpoint := range cfg.NER.Endpoints {
		name := fmt.Sprintf("model-%d", i+1)
		predictors = append(predictors, ner.NewHTTPPredictor(
			name, endpoint, cfg.NER.Timeout,
			cfg.NER.ChunkTokens, cfg.NER.ChunkOverlap, logger))
	}
	pipeline := ner.NewPipeline(predictors, vocab, logger)

	dictionary, err := loadDictionary(cfg, logger)
	if err != nil {
		logger.Error("dictionary load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checker := spellcheck.NewChecker(dictionary, cfg.Spell.MaxSuggestions, logger)

	metadata := extract.NewMetadataExtractor(logger)
	text := extract.NewTextExtractor(extract.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	copier := storage.NewCopier(cfg.Storage.DocumentsRoot, logger)
	layer := cache.NewLayer(documents, versions, analyzed, spelling, checker, logger)

	engine := syncer.NewEngine(syncer.Config{
		Documents: documents,
		Versions:  versions,
		Authors:   authors,
		Analyzed:  analyzed,
		Spelling:  spelling,
		Calendar:  calendar,
		Metadata:  metadata,
		Text:      text,
		Entities:  pipeline,
		Spell:     checker,
		Copier:    copier,
		Cache:     layer,
		Logger:    logger,
	})

	if err := layer.RebuildAll(ctx); err != nil {
		logger.Warn("cache warm-up failed, starting cold", slog.String("error", err.Error()))
	}

	runner := async.NewRunner(engine, logger)
	runner.Start(ctx)

	exporter := export.NewService(documents, versions, calendar, logger)

	srv := server.New(server.Config{
		Engine:       engine,
		Runner:       runner,
		Cache:        layer,
		Authors:      authors,
		Calendar:     calendar,
		Export:       exporter,
		Spell:        checker,
		DefaultRoot:  cfg.Storage.SyncRoot,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Logger:       logger,
	})

	go func() {
		if err := srv.Listen(cfg.Server.HTTPAddr); err != nil {
			logger.Error("http server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	runner.Shutdown()
	logger.Info("stopped")
}

func loadVocabulary(cfg *common.Config, logger *slog.Logger) (*ner.Vocabulary, error) {
	pc := ner.DefaultPatternConfig()
	if cfg.NER.PatternsPath != "" {
		var err error
		pc, err = ner.LoadPatternConfig(cfg.NER.PatternsPath)
		if err != nil {
			return nil, err
		}
		logger.Info("pattern tables loaded", slog.String("path", cfg.NER.PatternsPath))
	}
	return pc.Compile()
}

func loadDictionary(cfg *common.Config, logger *slog.Logger) (spellcheck.Dictionary, error) {
	if cfg.Spell.DictionaryPath == "" {
		logger.Warn("no spell dictionary configured, spell checking disabled")
		return spellcheck.Disabled(), nil
	}
	dict, err := spellcheck.LoadWordlist(cfg.Spell.DictionaryPath)
	if err != nil {
		return nil, err
	}
	logger.Info("spell dictionary loaded",
		slog.String("path", cfg.Spell.DictionaryPath),
		slog.Int("words", dict.Len()))
	return dict, nil
}
