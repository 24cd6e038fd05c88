package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"namematcher/extractors"
)

// ErrUnsupportedFormat формат входного файла не поддерживается
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Source источник строк текста для сегментации
type Source interface {
	// ID идентификатор источника, попадает в ProvenanceRef
	ID() string
	// Lines возвращает строки в порядке следования
	Lines(ctx context.Context) ([]extractors.TextLine, error)
}

// NewSourceForPath выбирает источник по расширению файла
func NewSourceForPath(path string) (Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return NewPDFSource(path), nil
	case ".txt", ".text":
		return NewTextFileSource(path), nil
	case ".html", ".htm":
		return NewHTMLFileSource(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// NewSourceForUpload выбирает источник по расширению имени загруженного файла;
// содержимое уже прочитано в память
func NewSourceForUpload(filename string, data []byte) (Source, error) {
	sourceID := filepath.Base(filename)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return NewPDFSourceFromBytes(sourceID, data), nil
	case ".txt", ".text":
		return NewTextSource(sourceID, bytes.NewReader(data)), nil
	case ".html", ".htm":
		return NewHTMLSource(sourceID, bytes.NewReader(data)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// splitLines режет текст на строки, LineIndex считается с нуля
func splitLines(sourceID string, page *int, text string) []extractors.TextLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]extractors.TextLine, 0, len(raw))
	for i, line := range raw {
		var pageRef *int
		if page != nil {
			p := *page
			pageRef = &p
		}
		lines = append(lines, extractors.TextLine{
			SourceID:  sourceID,
			Page:      pageRef,
			LineIndex: i,
			Text:      line,
		})
	}
	return lines
}
