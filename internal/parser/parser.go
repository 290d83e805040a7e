package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/plancheck/internal/doctree"
)

// Parser converts raw document bytes into a typed document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this checker can handle.
var SupportedExtensions = map[string]bool{
	".rst":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// textExtensions marks the formats whose raw bytes are the authored
// text, so the line-formatting rules apply to them.
var textExtensions = map[string]bool{
	".rst":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".rst", ".txt":
		return &RSTParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsTextFormat reports whether the file is an authored text format that
// the formatting rules apply to.
func IsTextFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return textExtensions[ext]
}
