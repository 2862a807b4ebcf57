// Package extract turns statement documents (PDFs, photos, CSV exports) into
// the raw CSV-like text the pipeline ingests.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnavailable is returned when the extraction service cannot be used: no
// API key, client setup failure, timeout or an API error.
var ErrUnavailable = errors.New("extraction service unavailable")

// ErrUnsupported is returned for files whose type cannot be ingested.
var ErrUnsupported = errors.New("unsupported file type")

// Extractor returns raw text for a document. An empty string means the
// service produced nothing.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

// Document is one input file.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsText reports whether the document is already text and needs no AI call.
func (d Document) IsText() bool {
	return strings.HasPrefix(d.MIMEType, "text/")
}

var mimeTypes = map[string]string{
	".csv":  "text/csv",
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// MIMETypeFor returns the MIME type for a file name by extension, or "" when
// the extension is not a supported input.
func MIMETypeFor(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}

// DocumentFromFile reads path into a Document.
func DocumentFromFile(path string) (Document, error) {
	mime := MIMETypeFor(path)
	if mime == "" {
		return Document{}, fmt.Errorf("%w %q", ErrUnsupported, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), MIMEType: mime, Data: data}, nil
}

// Text returns text documents unchanged.
type Text struct{}

func (Text) Extract(_ context.Context, doc Document) (string, error) {
	if !doc.IsText() {
		return "", fmt.Errorf("%s: %s is not a text document", doc.Name, doc.MIMEType)
	}
	return string(doc.Data), nil
}

// Auto routes text documents to Text and everything else to AI. A nil AI
// makes binary documents ErrUnavailable.
type Auto struct {
	AI Extractor
}

func (a Auto) Extract(ctx context.Context, doc Document) (string, error) {
	if doc.IsText() {
		return Text{}.Extract(ctx, doc)
	}
	if a.AI == nil {
		return "", fmt.Errorf("%w: no AI extractor configured for %s, is the API key set?", ErrUnavailable, doc.Name)
	}
	return a.AI.Extract(ctx, doc)
}
