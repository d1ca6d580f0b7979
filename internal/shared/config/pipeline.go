package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"docchat-backend/internal/chat"
	"docchat-backend/internal/extract"
	"docchat-backend/internal/extract/ocr"
	"docchat-backend/internal/extract/raster"
	"docchat-backend/internal/retrieval"
)

// Pipeline groups the ingestion and retrieval tunables.
type Pipeline struct {
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	TopK             int    `yaml:"top_k"`
	MaxContextChars  int    `yaml:"max_context_chars"`
	HistoryLimit     int    `yaml:"history_limit"`
	NativeMinChars   int    `yaml:"native_min_chars"`
	OCRLanguage      string `yaml:"ocr_language"`
	OCRDPI           int    `yaml:"ocr_dpi"`
	SummarySentences int    `yaml:"summary_sentences"`
}

// DefaultPipeline returns the stock tunables.
func DefaultPipeline() Pipeline {
	return Pipeline{
		ChunkSize:        retrieval.DefaultChunkSize,
		ChunkOverlap:     retrieval.DefaultChunkOverlap,
		TopK:             retrieval.DefaultTopK,
		MaxContextChars:  retrieval.DefaultMaxContextChars,
		HistoryLimit:     chat.DefaultHistoryLimit,
		NativeMinChars:   extract.DefaultNativeMinChars,
		OCRLanguage:      ocr.DefaultLanguage,
		OCRDPI:           raster.DefaultOptions().DPI,
		SummarySentences: 3,
	}
}

// LoadPipelineFile overlays the YAML file at path on top of base.
// Keys missing from the file keep their base value.
func LoadPipelineFile(path string, base Pipeline) (Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	out := base
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return base, fmt.Errorf("parse pipeline yaml: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// Validate rejects settings the chunker or ranker cannot work with.
func (p Pipeline) Validate() error {
	if p.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", p.ChunkSize)
	}
	if p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize {
		return fmt.Errorf("chunk_overlap must be >= 0 and < chunk_size, got %d", p.ChunkOverlap)
	}
	if p.TopK <= 0 || p.MaxContextChars <= 0 || p.OCRDPI <= 0 {
		return fmt.Errorf("top_k, max_context_chars and ocr_dpi must be positive")
	}
	if p.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", p.HistoryLimit)
	}
	if p.SummarySentences < 0 {
		return fmt.Errorf("summary_sentences must be >= 0, got %d", p.SummarySentences)
	}
	return nil
}

func pipelineFromEnv(p Pipeline) Pipeline {
	out := p
	out.OCRLanguage = getEnv("OCR_LANGUAGE", p.OCRLanguage)
	out.OCRDPI = getEnvInt("OCR_DPI", p.OCRDPI)
	out.HistoryLimit = getEnvInt("CHAT_HISTORY_LIMIT", p.HistoryLimit)
	out.SummarySentences = getEnvInt("SUMMARY_SENTENCES", p.SummarySentences)
	if err := out.Validate(); err != nil {
		return p
	}
	return out
}
