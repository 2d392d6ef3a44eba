package inkwell

import (
	"strings"
	"unicode/utf8"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeLabels trims label names, drops empty ones and removes
// case-insensitive duplicates, keeping the first spelling seen.
func NormalizeLabels(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := normalizeLabel(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SplitLabels parses a comma-separated form value into label names.
func SplitLabels(s string) []string {
	return NormalizeLabels(strings.Split(s, ","))
}

// Truncate shortens text to at most max runes, cutting at a word boundary
// when one is available and appending an ellipsis.
func Truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// AbsoluteURL joins a base URL with an already escaped site path such as
// the Link of a projected post.
func AbsoluteURL(base, link string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(link, "/")
}
