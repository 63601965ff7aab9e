package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func upper(s string) string {
	return strings.ToUpper(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

// DisplayName normalizes whitespace only. Names are compared exactly, so
// "Ana" and "ana" remain two different people.
func DisplayName(input string) string {
	return TrimAndNormalize(input)
}

func AccessCode(input string) string {
	return Pipeline{trim, upper}.Apply(input)
}

func PIN(input string) string {
	return trim(input)
}

func Email(input string) string {
	return Pipeline{trim, lower}.Apply(input)
}

// Domain accepts either a bare domain or a full email address and returns
// the lowercased host part without a leading "www.".
func Domain(input string) string {
	s := Email(input)
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}

func LocationName(input string) string {
	return TrimAndNormalize(input)
}
