// Command syncrun performs a single sync pass over a directory and prints
// the outcome, for cron jobs and manual runs without the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/legajo/docsync/internal/cache"
	"github.com/legajo/docsync/internal/common"
	"github.com/legajo/docsync/internal/extract"
	"github.com/legajo/docsync/internal/ner"
	"github.com/legajo/docsync/internal/repository"
	"github.com/legajo/docsync/internal/spellcheck"
	"github.com/legajo/docsync/internal/storage"
	syncer "github.com/legajo/docsync/internal/sync"
)

func main() {
	_ = godotenv.Load()

	root := flag.String("root", "", "directory to sync (defaults to SYNC_ROOT)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	target := *root
	if target == "" {
		target = cfg.Storage.SyncRoot
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

	pc := ner.DefaultPatternConfig()
	if cfg.NER.PatternsPath != "" {
		if pc, err = ner.LoadPatternConfig(cfg.NER.PatternsPath); err != nil {
			logger.Error("pattern config load failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	vocab, err := pc.Compile()
	if err != nil {
		logger.Error("pattern compile failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	predictors := []ner.Predictor{ner.NewPatternPredictor(vocab)}
	for i, endpoint := range cfg.NER.Endpoints {
		predictors = append(predictors, ner.NewHTTPPredictor(
			fmt.Sprintf("model-%d", i+1), endpoint, cfg.NER.Timeout,
			cfg.NER.ChunkTokens, cfg.NER.ChunkOverlap, logger))
	}

	var dictionary spellcheck.Dictionary = spellcheck.Disabled()
	if cfg.Spell.DictionaryPath != "" {
		wl, err := spellcheck.LoadWordlist(cfg.Spell.DictionaryPath)
		if err != nil {
			logger.Error("dictionary load failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		dictionary = wl
	}
	checker := spellcheck.NewChecker(dictionary, cfg.Spell.MaxSuggestions, logger)

	engine := syncer.NewEngine(syncer.Config{
		Documents: documents,
		Versions:  versions,
		Authors:   authors,
		Analyzed:  analyzed,
		Spelling:  spelling,
		Calendar:  calendar,
		Metadata:  extract.NewMetadataExtractor(logger),
		Text: extract.NewTextExtractor(extract.Config{
			Pdftoppm:  cfg.OCR.Pdftoppm,
			Tesseract: cfg.OCR.Tesseract,
			Lang:      cfg.OCR.Lang,
			DPI:       cfg.OCR.DPI,
			MaxPages:  cfg.OCR.MaxPages,
		}, logger),
		Entities: ner.NewPipeline(predictors, vocab, logger),
		Spell:    checker,
		Copier:   storage.NewCopier(cfg.Storage.DocumentsRoot, logger),
		Cache:    cache.NewLayer(documents, versions, analyzed, spelling, checker, logger),
		Logger:   logger,
	})

	result, err := engine.Run(ctx, target)
	if err != nil {
		logger.Error("sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}
