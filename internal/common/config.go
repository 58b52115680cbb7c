package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	OCR      OCRConfig
	NER      NERConfig
	Spell    SpellConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// StorageConfig holds storage configuration. SyncRoot is the directory
// users drop files into; DocumentsRoot holds the managed version copies
// and must not live inside SyncRoot's walk unless the engine skips it.
type StorageConfig struct {
	SyncRoot      string
	DocumentsRoot string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// NERConfig holds entity-extraction backend configuration
type NERConfig struct {
	Endpoints    []string
	Timeout      time.Duration
	ChunkTokens  int
	ChunkOverlap int
	PatternsPath string
}

// SpellConfig holds spell-checking configuration
type SpellConfig struct {
	DictionaryPath string
	MaxSuggestions int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("DB_PATH", "./data/docsync.db"),
			BusyTimeout: getEnvAsDuration("DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			SyncRoot:      getEnv("SYNC_ROOT", "./data/inbox"),
			DocumentsRoot: getEnv("DOCUMENTS_ROOT", "./data/documents"),
		},
		OCR: OCRConfig{
			Pdftoppm:  getEnv("OCR_PDFTOPPM", "pdftoppm"),
			Tesseract: getEnv("OCR_TESSERACT", "tesseract"),
			Lang:      getEnv("OCR_LANG", "spa"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		NER: NERConfig{
			Endpoints:    getEnvAsList("NER_ENDPOINTS"),
			Timeout:      getEnvAsDuration("NER_TIMEOUT", 45*time.Second),
			ChunkTokens:  getEnvAsInt("NER_CHUNK_TOKENS", 450),
			ChunkOverlap: getEnvAsInt("NER_CHUNK_OVERLAP", 50),
			PatternsPath: getEnv("NER_PATTERNS_PATH", ""),
		},
		Spell: SpellConfig{
			DictionaryPath: getEnv("SPELL_DICTIONARY_PATH", ""),
			MaxSuggestions: getEnvAsInt("SPELL_MAX_SUGGESTIONS", 5),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	if c.Storage.SyncRoot == "" {
		return NewAppError("CONFIG_ERROR", "SYNC_ROOT is required", ErrInvalidInput)
	}
	if c.Storage.DocumentsRoot == "" {
		return NewAppError("CONFIG_ERROR", "DOCUMENTS_ROOT is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.NER.ChunkTokens <= 0 || c.NER.ChunkOverlap < 0 || c.NER.ChunkOverlap >= c.NER.ChunkTokens {
		return NewAppError("CONFIG_ERROR", "NER chunk size/overlap out of range", ErrInvalidInput)
	}
	return nil
}
