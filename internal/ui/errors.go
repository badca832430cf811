package ui

import (
	"strings"
	"unicode/utf8"
)

const (
	maxErrorLines  = 2
	errorPrefix    = "Error: "
	truncationMark = "..."
)

// formatErrorForDisplay wraps an error message to at most maxErrorLines lines of
// maxWidth runes, prefixed with "Error: ". Overflow is cut and marked with "...".
func formatErrorForDisplay(err error, maxWidth int) string {
	if err == nil {
		return ""
	}
	return wrapMessage(errorPrefix, err.Error(), maxWidth, maxErrorLines)
}

// wrapMessage word-wraps prefix+message into at most maxLines lines of maxWidth runes
func wrapMessage(prefix, message string, maxWidth, maxLines int) string {
	words := strings.Fields(message)
	if len(words) == 0 {
		return prefix + "unknown error"
	}
	if maxWidth < 10 {
		maxWidth = 10
	}

	var lines []string
	current := prefix + words[0]
	truncated := false

	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= maxWidth {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		if len(lines) == maxLines {
			truncated = true
			break
		}
		current = word
	}
	if !truncated {
		lines = append(lines, current)
	}

	if truncated {
		last := []rune(lines[len(lines)-1])
		keep := maxWidth - utf8.RuneCountInString(truncationMark)
		if len(last) > keep {
			last = last[:keep]
		}
		lines[len(lines)-1] = string(last) + truncationMark
	}

	return strings.Join(lines, "\n")
}
