package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameRunes = 120

// SanitizeFileName makes an uploaded file name safe to embed in a storage key:
// separators become underscores, control characters are dropped and the
// result is capped at 120 runes.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(name))
	if runes := []rune(s); len(runes) > maxFileNameRunes {
		s = string(runes[len(runes)-maxFileNameRunes:])
	}
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
