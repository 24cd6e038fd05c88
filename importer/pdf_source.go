package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"namematcher/extractors"
)

// PDFSource извлекает текст PDF постранично; номера страниц с единицы
type PDFSource struct {
	id     string
	path   string
	data   []byte
	logger *slog.Logger
}

// NewPDFSource читает PDF с диска
func NewPDFSource(path string) *PDFSource {
	return &PDFSource{
		id:     filepath.Base(path),
		path:   path,
		logger: slog.Default().With("component", "pdf_source"),
	}
}

// NewPDFSourceFromBytes читает PDF из памяти (загруженный файл)
func NewPDFSourceFromBytes(sourceID string, data []byte) *PDFSource {
	return &PDFSource{
		id:     sourceID,
		data:   data,
		logger: slog.Default().With("component", "pdf_source"),
	}
}

// ID имя источника
func (s *PDFSource) ID() string {
	return s.id
}

// Lines возвращает строки всех страниц. Страница, текст которой не извлекается,
// пропускается с предупреждением.
func (s *PDFSource) Lines(ctx context.Context) ([]extractors.TextLine, error) {
	reader, closeFn, err := s.open()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var lines []extractors.TextLine
	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			s.logger.Warn("Failed to extract page text",
				"source", s.id,
				"page", pageNum,
				"error", err.Error())
			continue
		}
		if text == "" {
			continue
		}

		n := pageNum
		lines = append(lines, splitLines(s.id, &n, text)...)
	}

	s.logger.Debug("PDF text extracted",
		"source", s.id,
		"pages", total,
		"lines", len(lines))

	return lines, nil
}

func (s *PDFSource) open() (*pdf.Reader, func(), error) {
	if s.data != nil {
		reader, err := pdf.NewReader(bytes.NewReader(s.data), int64(len(s.data)))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse PDF: %w", err)
		}
		return reader, func() {}, nil
	}

	file, reader, err := pdf.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return reader, func() { _ = file.Close() }, nil
}
