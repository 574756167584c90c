package util

import (
	"regexp"
	"strconv"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	sizeRegex  = regexp.MustCompile(`^(\d+)x(\d+)$`)
)

func IsValidEmail(s string) bool {
	return s != "" && emailRegex.MatchString(s)
}

// ParseSize parses a "WxH" size string. ok is false for anything else.
func ParseSize(s string) (width, height int, ok bool) {
	m := sizeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

func IsValidSize(s string) bool {
	_, _, ok := ParseSize(s)
	return ok
}
