package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnsupportedFormatError reports a persona document with an extension
// the analyzer does not accept.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q for %s (supported: .txt, .md)", e.Ext, e.Path)
}

// documentExts lists the formats accepted for persona analysis. Context
// material is broader; see Fetcher.
var documentExts = map[string]bool{
	".txt": true,
	".md":  true,
}

// ReadDocument loads a persona source document. Only plain-text formats
// are accepted since the analysis prompt embeds the raw text verbatim.
func ReadDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !documentExts[ext] {
		return "", &UnsupportedFormatError{Path: path, Ext: ext}
	}
	if err := checkFile(path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read document %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("document %s is empty", path)
	}
	return text, nil
}
