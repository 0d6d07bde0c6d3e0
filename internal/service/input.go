package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minTaskInputLen = 8
	minLetterRatio  = 0.2
)

var (
	meaningfulChar = regexp.MustCompile(`[A-Za-z\x{0E01}-\x{0E59}0-9]`)
	letterChar     = regexp.MustCompile(`[A-Za-z\x{0E01}-\x{0E59}]`)
)

// IsGibberish reports whether text is too short or too noisy to plan from.
func IsGibberish(text string) bool {
	t := strings.TrimSpace(text)
	n := utf8.RuneCountInString(t)
	if n < minTaskInputLen {
		return true
	}
	if !meaningfulChar.MatchString(t) {
		return true
	}
	if hasRun(t, 5) {
		return true
	}
	letters := len(letterChar.FindAllStringIndex(t, -1))
	return float64(letters)/float64(n) < minLetterRatio
}

// hasRun reports whether any rune other than a newline repeats n or more
// times in a row.
func hasRun(s string, n int) bool {
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == '\n' {
			prev, run = -1, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// clampOptions bounds the requested option count to [1, 3].
func clampOptions(n int) int {
	return max(1, min(n, 3))
}
