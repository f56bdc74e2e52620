package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize returns the canonical BCP 47 form of a locale, or false when it
// cannot be parsed.
func Normalize(locale string) (string, bool) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", false
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return "", false
	}

	return tag.String(), true
}

// Matcher picks the best supported locale for a requested one.
type Matcher struct {
	supported []string
	fallback  string
	matcher   language.Matcher
}

// NewMatcher builds a matcher over supported locales. The fallback is used
// when nothing matches and is moved to the front of the list.
func NewMatcher(supported []string, fallback string) *Matcher {
	locales := []string{fallback}
	for _, l := range supported {
		if l != fallback {
			locales = append(locales, l)
		}
	}

	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.Make(l))
	}

	return &Matcher{
		supported: locales,
		fallback:  fallback,
		matcher:   language.NewMatcher(tags),
	}
}

func (m *Matcher) Supported() []string {
	return append([]string(nil), m.supported...)
}

func (m *Matcher) Fallback() string {
	return m.fallback
}

// Match resolves requested to a supported locale. The boolean is false when
// the fallback had to be used.
func (m *Matcher) Match(requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return m.fallback, false
	}

	tag, err := language.Parse(requested)
	if err != nil {
		return m.fallback, false
	}

	return m.MatchTags(tag)
}

// MatchAcceptLanguage resolves an Accept-Language header.
func (m *Matcher) MatchAcceptLanguage(header string) (string, bool) {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return m.fallback, false
	}

	return m.MatchTags(tags...)
}

func (m *Matcher) MatchTags(tags ...language.Tag) (string, bool) {
	_, index, confidence := m.matcher.Match(tags...)
	if confidence == language.No {
		return m.fallback, false
	}

	return m.supported[index], true
}

// Has reports whether locale is one of the supported locales.
func (m *Matcher) Has(locale string) bool {
	for _, l := range m.supported {
		if l == locale {
			return true
		}
	}

	return false
}
