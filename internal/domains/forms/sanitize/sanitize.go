// Package sanitize normalises free-text form input.
package sanitize

import (
	"strings"
	"unicode"
)

// Phone keeps up to ten digits and formats them as (555)123-4567, partially while typing.
func Phone(value string) string {
	digits := onlyDigits(value, 10)
	switch {
	case len(digits) == 0:
		return ""
	case len(digits) <= 3:
		return "(" + digits
	case len(digits) <= 6:
		return "(" + digits[:3] + ")" + digits[3:]
	default:
		return "(" + digits[:3] + ")" + digits[3:6] + "-" + digits[6:]
	}
}

// Name keeps ASCII letters, digits and spaces.
func Name(value string) string {
	return keep(value, func(r rune) bool { return isASCIIAlnum(r) || r == ' ' })
}

// City keeps ASCII letters, digits, spaces and hyphens.
func City(value string) string {
	return keep(value, func(r rune) bool { return isASCIIAlnum(r) || r == ' ' || r == '-' })
}

// Address keeps ASCII letters, digits, spaces and hyphens.
func Address(value string) string {
	return City(value)
}

// Zip keeps the first five digits.
func Zip(value string) string {
	return onlyDigits(value, 5)
}

// Ptr applies fn to the value behind p, leaving nil alone.
func Ptr(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	out := fn(*p)
	return &out
}

func onlyDigits(value string, limit int) string {
	var b strings.Builder
	for _, r := range value {
		if b.Len() == limit {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keep(value string, allowed func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, value)
}

func isASCIIAlnum(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
