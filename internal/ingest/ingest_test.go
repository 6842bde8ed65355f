package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect(t *testing.T) {
	cases := []struct {
		source string
		want   Kind
	}{
		{"https://example.com/post", KindURL},
		{"http://example.com", KindURL},
		{"notes.pdf", KindPDF},
		{"Paper.PDF", KindPDF},
		{"notes.txt", KindFile},
		{"README.md", KindFile},
		{"plain words", KindFile},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Detect(tc.source), tc.source)
	}
}

func TestReadDocument(t *testing.T) {
	path := writeTemp(t, "doc.txt", "Turbine Report\n\nOutput rose 4% year over year.")
	text, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Turbine Report")
}

func TestReadDocumentMarkdown(t *testing.T) {
	path := writeTemp(t, "doc.md", "# Heading\n\nbody")
	_, err := ReadDocument(path)
	require.NoError(t, err)
}

func TestReadDocumentUnsupportedFormat(t *testing.T) {
	cases := []string{"doc.pdf", "doc.docx", "doc.html", "doc"}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeTemp(t, name, "content")
			_, err := ReadDocument(path)
			var ufe *UnsupportedFormatError
			require.ErrorAs(t, err, &ufe)
			assert.Equal(t, path, ufe.Path)
		})
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadDocumentEmpty(t *testing.T) {
	path := writeTemp(t, "blank.txt", "   \n\t\n")
	_, err := ReadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestFileFetcher(t *testing.T) {
	path := writeTemp(t, "notes.txt", "Grid Notes\nsecond line here")
	m, err := (&FileFetcher{}).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Grid Notes", m.Title)
	assert.Equal(t, "notes.txt", m.Origin)
	assert.Equal(t, 5, m.WordCount)
}

func TestFileFetcherDirectory(t *testing.T) {
	_, err := (&FileFetcher{}).Fetch(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestURLFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Tidal Power</title></head><body>
<article><h1>Tidal Power</h1><p>Tidal generators convert the energy of tides into electricity.
They are more predictable than wind and solar sources, and recent designs have
reduced the cost per megawatt considerably across several pilot deployments.</p></article>
</body></html>`))
	}))
	defer srv.Close()

	m, err := (&URLFetcher{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Tidal Power", m.Title)
	assert.Contains(t, m.Text, "predictable than wind")
	assert.Equal(t, srv.URL, m.Origin)
}

func TestURLFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := (&URLFetcher{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, wordCount(""))
	assert.Equal(t, 0, wordCount("  \n\t"))
	assert.Equal(t, 3, wordCount("one  two\nthree"))
}

func TestTitleFromText(t *testing.T) {
	assert.Equal(t, "First line", titleFromText("First line\nsecond", 80))
	assert.Equal(t, "Untitled", titleFromText("", 80))
	assert.Equal(t, "abcde...", titleFromText("abcdefgh", 5))
}
