package enhance

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
)

// ExtractPreview pulls whatever portion of the "enhanced" value is visible
// in an in-flight model response. The text is usually truncated JSON, so
// this is best effort only: the returned preview is for display and is
// never fed into parsing or merge. The boolean is false when nothing
// recognizable has arrived yet.
func ExtractPreview(accumulated string) (string, bool) {
	text := llm.CleanJSONBlock(accumulated)

	if gjson.Valid(text) {
		enhanced := gjson.Get(text, "enhanced")
		if enhanced.Exists() {
			return enhanced.Raw, true
		}
		return "", false
	}
	return scanEnhanced(text)
}

// scanEnhanced walks truncated JSON looking for the "enhanced" key and
// returns the value text seen so far. It tracks string/escape state and
// brace/bracket depth so a key inside a nested value is not mistaken for
// the top-level one.
func scanEnhanced(text string) (string, bool) {
	const key = `"enhanced"`

	depth := 0
	inString := false
	escaped := false
	keyStart := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			if depth == 1 && strings.HasPrefix(text[i:], key) {
				keyStart = i
				i += len(key) - 1
				inString = false
			}
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ':':
			if keyStart >= 0 {
				value := strings.TrimSpace(text[i+1:])
				value = strings.TrimSuffix(value, ",")
				if value == "" {
					return "", false
				}
				return truncateValue(value), true
			}
		}
	}
	return "", false
}

// truncateValue trims a possibly unterminated JSON value down to clean
// display text. String values lose their quotes; composite values are
// returned as-is, truncation included.
func truncateValue(value string) string {
	if strings.HasPrefix(value, `"`) {
		body := value[1:]
		// Scan for the closing quote, honoring escapes.
		escaped := false
		for i := 0; i < len(body); i++ {
			if escaped {
				escaped = false
				continue
			}
			switch body[i] {
			case '\\':
				escaped = true
			case '"':
				return body[:i]
			}
		}
		return body
	}
	return value
}
