package core

import (
	"strings"
	"unicode"
)

// StateID lower-cases a state name and removes all whitespace.
func StateID(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// RegionID prefers the region code column. Without one it falls back to the
// leading token of the subtotal label, so "MH1 Region Total" yields "mh1".
func RegionID(code, label string) string {
	if code = strings.TrimSpace(code); code != "" {
		return strings.ToLower(code)
	}
	if fields := strings.Fields(label); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return ""
}

// BranchID lower-cases a branch name and removes whitespace and hyphens.
func BranchID(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(name))
}
