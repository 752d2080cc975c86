package task

import (
	"fmt"
	"strings"
)

// NormalizeCategory lowercases and trims a category, truncating it to
// MaxCategoryLen. The second value is a warning when truncation happened.
func NormalizeCategory(s string) (string, string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if cut, ok := truncateRunes(s, MaxCategoryLen); ok {
		return cut, fmt.Sprintf("category truncated to %d characters: %q", MaxCategoryLen, cut)
	}
	return s, ""
}

// NormalizeTag lowercases and trims a tag, truncating it to MaxTagLen.
func NormalizeTag(s string) (string, string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if cut, ok := truncateRunes(s, MaxTagLen); ok {
		return cut, fmt.Sprintf("tag truncated to %d characters: %q", MaxTagLen, cut)
	}
	return s, ""
}

// NormalizeTags normalizes every tag, drops blanks and duplicates and, when
// limit > 0, keeps only the first limit tags. A nil slice is returned when no
// tags remain so that unset tags stay absent on disk.
func NormalizeTags(in []string, limit int) ([]string, []string) {
	var out, warnings []string
	seen := map[string]bool{}
	for _, raw := range in {
		tag, warn := NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if seen[tag] {
			warnings = append(warnings, fmt.Sprintf("duplicate tag %q ignored", tag))
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if limit > 0 && len(out) > limit {
		warnings = append(warnings, fmt.Sprintf("only the first %d tags were kept", limit))
		out = out[:limit]
	}
	return out, warnings
}

func validateTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "title", Reason: "title is required"}
	}
	if n := len([]rune(s)); n > MaxTitleLen {
		return "", &ValidationError{Field: "title", Reason: fmt.Sprintf("%d characters exceeds the %d limit", n, MaxTitleLen)}
	}
	return s, nil
}

func truncateRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return strings.TrimSpace(string(r[:n])), true
}
