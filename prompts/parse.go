// Package prompts holds the system prompts the bot sends to the generation
// backend and the parsers for its tagged output.
//
// The backend is instructed to wrap its reply in XML-style paired tags
// (<response>…</response> and friends, nested at most two levels deep).
// Extraction is non-greedy and tolerates newlines inside a tag; tag-like
// text inside user-authored content can confuse it, which is a documented
// limitation of the grammar rather than a parse error. Missing or malformed
// structure never fails: every extractor degrades to a defined default.
package prompts

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// tagPatterns caches compiled patterns per tag name so repeated parses do
// not recompile.
var tagPatterns sync.Map // string -> *regexp.Regexp

func tagPattern(tag string) *regexp.Regexp {
	if cached, ok := tagPatterns.Load(tag); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(fmt.Sprintf(`(?s)<%s>(.*?)</%s>`, regexp.QuoteMeta(tag), regexp.QuoteMeta(tag)))
	tagPatterns.Store(tag, re)
	return re
}

// ExtractTag returns the trimmed inner text of the first occurrence of the
// tag, or "" when the tag is absent.
func ExtractTag(text, tag string) string {
	match := tagPattern(tag).FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// ExtractBool returns true only when the tag's trimmed inner text equals the
// literal "true", case-insensitively. Absence is false.
func ExtractBool(text, tag string) bool {
	return strings.EqualFold(ExtractTag(text, tag), "true")
}

// ExtractList returns the inner text of every item tag within the first
// occurrence of the parent tag, in document order. An absent parent yields
// an empty list.
func ExtractList(text, parent, item string) []string {
	span := ExtractTag(text, parent)
	if span == "" {
		return nil
	}
	matches := tagPattern(item).FindAllStringSubmatch(span, -1)
	items := make([]string, 0, len(matches))
	for _, match := range matches {
		items = append(items, strings.TrimSpace(match[1]))
	}
	return items
}
