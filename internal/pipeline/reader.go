package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmaldon/resolutor/internal/model"
	"github.com/dmaldon/resolutor/internal/ocr"
)

// ReadDocument loads OCR output from disk. hOCR files (.hocr, .html, .htm)
// are decoded for per-line confidence; anything else is read as a plain
// UTF-8 text blob with unknown confidence.
func ReadDocument(path string) (model.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("read document: %w", err)
	}
	return DocumentFromBytes(path, data)
}

// DocumentFromBytes builds a RawDocument from already-read file content
func DocumentFromBytes(path string, data []byte) (model.RawDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hocr", ".html", ".htm":
		return ocr.ParseHOCR(bytes.NewReader(data), path)
	default:
		return model.RawDocument{
			Source: path,
			Text:   string(data),
		}, nil
	}
}
