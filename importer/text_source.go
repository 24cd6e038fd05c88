package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"namematcher/extractors"
)

// TextSource вставленный текст или текстовый файл.
// Кодировка: UTF-8 (BOM отбрасывается), UTF-16 по BOM, иначе Windows-1252.
type TextSource struct {
	id     string
	path   string
	reader io.Reader
}

// NewTextSource читает текст из reader
func NewTextSource(sourceID string, r io.Reader) *TextSource {
	return &TextSource{id: sourceID, reader: r}
}

// NewTextFileSource читает текстовый файл при вызове Lines
func NewTextFileSource(path string) *TextSource {
	return &TextSource{id: filepath.Base(path), path: path}
}

// ID имя источника
func (s *TextSource) ID() string {
	return s.id
}

// Lines декодирует текст и разбивает его на строки без номера страницы
func (s *TextSource) Lines(ctx context.Context) ([]extractors.TextLine, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return splitLines(s.id, nil, text), nil
}

func (s *TextSource) read() ([]byte, error) {
	if s.reader != nil {
		data, err := io.ReadAll(s.reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read text: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return data, nil
}

// DecodeText приводит байты к UTF-8
func DecodeText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err == nil && utf8.Valid(decoded) && !hasReplacement(data, decoded) {
		return string(decoded), nil
	}

	decoded, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

// hasReplacement сообщает, что UTF-8 декодер заменил недопустимые байты на U+FFFD
func hasReplacement(raw, decoded []byte) bool {
	if utf8.Valid(raw) {
		return false
	}
	for len(decoded) > 0 {
		r, size := utf8.DecodeRune(decoded)
		if r == utf8.RuneError {
			return true
		}
		decoded = decoded[size:]
	}
	return false
}
