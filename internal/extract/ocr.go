package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OCRExtractor shells out to the tesseract binary.
type OCRExtractor struct {
	Binary string
}

// NewOCRExtractor returns an extractor using binary, or "tesseract" from PATH.
func NewOCRExtractor(binary string) OCRExtractor {
	if binary == "" {
		binary = "tesseract"
	}
	return OCRExtractor{Binary: binary}
}

// Extract implements Extractor. The recognised text is read from stdout.
func (o OCRExtractor) Extract(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, o.Binary, path, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run %s: %w: %s", o.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
