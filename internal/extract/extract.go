// Package extract pulls plain text out of stored uploads. Extraction is
// best effort: callers get nil text instead of an error.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskhub/internal/metrics"
	"taskhub/internal/model"
)

// Extractor reads the text of one file on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Service picks the extractor for a file type and neutralizes failures.
type Service struct {
	pdf     Extractor
	ocr     Extractor
	timeout time.Duration
}

// NewService wires the PDF and OCR extractors with a per-file timeout.
func NewService(pdf, ocr Extractor, timeout time.Duration) *Service {
	return &Service{pdf: pdf, ocr: ocr, timeout: timeout}
}

// Text returns the trimmed text of the file, or nil when extraction errors,
// panics or runs past the timeout. An empty document yields a pointer to "".
func (s *Service) Text(ctx context.Context, fileType model.FileType, path string) *string {
	extractor := s.ocr
	if fileType == model.FileTypePDF {
		extractor = s.pdf
	}
	if extractor == nil {
		metrics.ObserveExtraction(string(fileType), metrics.ExtractionFailed)
		return nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("extractor panic: %v", r)}
			}
		}()
		text, err := extractor.Extract(ctx, path)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	if res.err != nil {
		slog.Warn("text extraction failed", "file_type", fileType, "path", path, "error", res.err)
		metrics.ObserveExtraction(string(fileType), metrics.ExtractionFailed)
		return nil
	}

	metrics.ObserveExtraction(string(fileType), metrics.ExtractionOK)
	text := strings.TrimSpace(res.text)
	return &text
}
