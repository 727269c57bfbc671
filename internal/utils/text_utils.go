package utils

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// TextProcessor provides utilities for processing message text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// Latin1ToUTF8 reinterprets raw as ISO-8859-1 and returns it encoded as UTF-8.
// Every byte is a valid ISO-8859-1 code point, so valid UTF-8 input that
// contains multi-byte sequences is changed too; callers only use this after
// UTF-8 has been ruled out.
func (tp *TextProcessor) Latin1ToUTF8(raw []byte) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ISO-8859-1: %w", err)
	}

	tp.logger.Debug("Text re-encoded",
		zap.String("from", "ISO-8859-1"),
		zap.Int("original_size", len(raw)),
		zap.Int("encoded_size", len(out)))

	return out, nil
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + "\n[... truncated ...]"
}
