package domain

import (
	"strings"

	"golang.org/x/text/language"
)

const MaxLangTagLen = 35

// LanguageSettings is a connection's recognition/translation configuration.
// Source is the primary recognition tag, Alternatives are extra tags the
// provider may auto-detect among, Target is the tag captions are displayed in.
type LanguageSettings struct {
	Source       string
	Alternatives []string
	Target       string
}

func DefaultLanguageSettings() LanguageSettings {
	return LanguageSettings{Source: "en-US", Target: "en-US"}
}

// SameSources reports whether two settings configure the same recognition
// language set. The comparison is structural and order-sensitive: the first
// tag is the provider's primary language, the rest are alternatives.
func (s LanguageSettings) SameSources(o LanguageSettings) bool {
	if s.Source != o.Source {
		return false
	}
	if len(s.Alternatives) != len(o.Alternatives) {
		return false
	}
	for i := range s.Alternatives {
		if s.Alternatives[i] != o.Alternatives[i] {
			return false
		}
	}
	return true
}

// PrimarySubtag returns the base language of a BCP 47 tag, "en" for "en-US".
// Unparseable tags fall back to the raw prefix before the first separator.
func PrimarySubtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		if base, conf := t.Base(); conf != language.No {
			return base.String()
		}
	}
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
