package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileFetcher reads a plain text file as context material.
type FileFetcher struct{}

func (f *FileFetcher) Fetch(_ context.Context, source string) (*Material, error) {
	if err := checkFile(source); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", source, err)
	}
	text := string(data)
	if len(text) == 0 {
		return nil, fmt.Errorf("file %s is empty", source)
	}

	return &Material{
		Text:      text,
		Title:     titleFromText(text, 80),
		Origin:    filepath.Base(source),
		WordCount: wordCount(text),
	}, nil
}
