package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"namematcher/extractors"
)

// blockSelectors элементы, после которых начинается новая строка
const blockSelectors = "p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, dt, dd, section, article, blockquote"

// HTMLSource HTML, вставленный из браузера или сохраненный файлом
type HTMLSource struct {
	id     string
	path   string
	reader io.Reader
}

// NewHTMLSource читает HTML из reader
func NewHTMLSource(sourceID string, r io.Reader) *HTMLSource {
	return &HTMLSource{id: sourceID, reader: r}
}

// NewHTMLFileSource читает HTML-файл при вызове Lines
func NewHTMLFileSource(path string) *HTMLSource {
	return &HTMLSource{id: filepath.Base(path), path: path}
}

// ID имя источника
func (s *HTMLSource) ID() string {
	return s.id
}

// Lines возвращает видимый текст документа; блочные элементы и <br> дают переводы строк
func (s *HTMLSource) Lines(ctx context.Context) ([]extractors.TextLine, error) {
	reader := s.reader
	if reader == nil {
		file, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).AppendHtml("\n")

	text := doc.Text()

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return splitLines(s.id, nil, strings.Join(kept, "\n")), nil
}
