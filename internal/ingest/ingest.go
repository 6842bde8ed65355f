// Package ingest turns the inputs of a studio session into plain text:
// persona source documents on one side, supplementary context material
// (files, PDFs, web articles) on the other.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Kind classifies a context-material source string.
type Kind string

const (
	KindURL  Kind = "url"
	KindPDF  Kind = "pdf"
	KindFile Kind = "file"

	// maxSourceSize caps any single input at 25 MB.
	maxSourceSize = 25 * 1024 * 1024
)

func (k Kind) String() string { return string(k) }

// Material is extracted context text ready to hand to the dialogue
// prompt.
type Material struct {
	Text      string
	Title     string
	Origin    string
	WordCount int
}

// Fetcher extracts Material from one source string.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*Material, error)
}

// Detect picks the fetcher kind for a source string. Anything that is
// neither a URL nor a .pdf path is treated as a plain text file.
func Detect(source string) Kind {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return KindURL
	}
	if strings.HasSuffix(strings.ToLower(source), ".pdf") {
		return KindPDF
	}
	return KindFile
}

// ForSource returns the fetcher matching Detect(source).
func ForSource(source string) Fetcher {
	switch Detect(source) {
	case KindURL:
		return &URLFetcher{}
	case KindPDF:
		return &PDFFetcher{}
	default:
		return &FileFetcher{}
	}
}

func wordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}

// titleFromText takes the first non-empty line, truncated.
func titleFromText(text string, maxLen int) string {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		line = text[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxLen {
		line = line[:maxLen] + "..."
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxSourceSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxSourceSize/(1024*1024))
	}
	return nil
}
