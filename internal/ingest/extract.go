package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxDocumentSize bounds how much of an uploaded document is read.
const maxDocumentSize = 20 << 20 // 20MB

// ErrUnsupportedFormat is returned for file types the ingestor cannot
// convert to text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractText converts an uploaded document into plain text. The format
// is chosen by the extension of name: .txt is read as-is, .pdf goes
// through the PDF text extractor, .docx through the WordprocessingML
// reader. Anything else fails with ErrUnsupportedFormat before any data
// is read.
func ExtractText(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".txt", ".text", ".md":
		data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
		return string(data), nil

	case ".pdf":
		return extractPDF(name, r)

	case ".docx":
		return extractDocx(name, r)

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf %s: %w", name, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting text from %s page %d: %w", name, pageNum, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
