package textlens

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// extContentTypes maps file extensions to the content types the API
// accepts for document uploads.
var extContentTypes = map[string]string{
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".xml":      "application/xml",
	".json":     "application/json",
}

// DetectContentType determines the content type for a document, by file
// extension first and content sniffing as a fallback.
func DetectContentType(filename string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if ct, ok := extContentTypes[ext]; ok {
			return ct
		}
	}

	ct := http.DetectContentType(data)
	// Strip the charset parameter; the API takes UTF-8 only.
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// DecodeContent converts document bytes in the given encoding to a UTF-8
// string. Supported encodings are "utf-8" (or empty), "windows-1251" and
// "iso-8859-1".
func DecodeContent(data []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("content is not valid UTF-8")
		}
		return string(data), nil
	case "windows-1251":
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode windows-1251: %w", err)
		}
		return string(decoded), nil
	case "iso-8859-1", "latin1", "latin-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode iso-8859-1: %w", err)
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %q", encoding)
	}
}
