package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"talentalign/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Kind identifies a supported document format
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
)

// DetectKind maps a filename extension to a document kind. Unknown
// extensions are treated as plain text so piped and extensionless
// files still work.
func DetectKind(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	default:
		return KindText
	}
}

// FromFile reads a document from disk and extracts its plain text
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	return FromBytes(path, data)
}

// FromBytes extracts plain text from raw document bytes, dispatching
// on the filename extension
func FromBytes(filename string, data []byte) (string, error) {
	switch DetectKind(filename) {
	case KindPDF:
		text, err := pdfText(data)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeUnsupportedFormat,
				fmt.Sprintf("Failed to parse PDF: %s", filename), err)
		}
		return Clean(text), nil
	case KindDocx:
		text, err := docxText(data)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeUnsupportedFormat,
				fmt.Sprintf("Failed to parse DOCX: %s", filename), err)
		}
		return Clean(text), nil
	default:
		return Clean(string(data)), nil
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

var (
	// word-processing runs end paragraphs with </w:p>; turn those into
	// newlines before stripping the remaining markup
	docxParaRe = regexp.MustCompile(`</w:p>`)
	docxTagRe  = regexp.MustCompile(`<[^>]+>`)
)

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = docxParaRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")
	return content, nil
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// Clean normalizes line endings, strips stray control characters left
// by document parsers and collapses runs of blank lines
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}

	cleaned := blankLinesRe.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(cleaned)
}
