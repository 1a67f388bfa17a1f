// Package parsing turns raw candidate documents into structured types. Text
// extraction is a pluggable boundary so document formats can be added
// without touching the structuring calls.
package parsing

import (
	"strings"
	"unicode/utf8"
)

// TextExtractor converts a raw uploaded document into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// PlainTextExtractor handles text uploads. It rejects binary content and
// normalizes line endings.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Message: "document is empty"}
	}
	if !utf8.Valid(data) {
		return "", &ExtractionError{Message: "document is not valid UTF-8 text"}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ExtractionError{Message: "document contains no text"}
	}
	return text, nil
}
