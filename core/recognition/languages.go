package recognition

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a locale code passed to the recognition source, e.g. "en-US".
type Language string

const (
	English Language = "en-US"
	Hindi   Language = "hi-IN"
	Tamil   Language = "ta-IN"

	DefaultLanguage = English
)

type LanguageInfo struct {
	Code    Language
	Display string
}

// Languages is an ordered set of selectable languages.
type Languages []LanguageInfo

// DefaultLanguages returns the built-in language set.
func DefaultLanguages() Languages {
	return Languages{
		{Code: English, Display: "English"},
		{Code: Hindi, Display: "हिंदी"},
		{Code: Tamil, Display: "தமிழ்"},
	}
}

// NewLanguages builds a language set, rejecting empty or duplicate codes.
func NewLanguages(infos ...LanguageInfo) (Languages, error) {
	languages := make(Languages, 0, len(infos))
	for _, info := range infos {
		if info.Code == "" {
			return nil, fmt.Errorf("language code is required")
		}
		if languages.Supports(info.Code) {
			return nil, fmt.Errorf("duplicate language %q", info.Code)
		}
		if info.Display == "" {
			info.Display = string(info.Code)
		}
		languages = append(languages, info)
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("at least one language is required")
	}
	return languages, nil
}

func (l Languages) Supports(code Language) bool {
	_, ok := l.Lookup(code)
	return ok
}

func (l Languages) Lookup(code Language) (LanguageInfo, bool) {
	index := slices.IndexFunc(l, func(info LanguageInfo) bool { return info.Code == code })
	if index < 0 {
		return LanguageInfo{}, false
	}
	return l[index], true
}

// Display returns the display label for code, or the code itself when it is
// not part of the set.
func (l Languages) Display(code Language) string {
	if info, ok := l.Lookup(code); ok {
		return info.Display
	}
	return string(code)
}

// Next returns the language following code, wrapping around at the end.
func (l Languages) Next(code Language) Language {
	if len(l) == 0 {
		return code
	}
	index := slices.IndexFunc(l, func(info LanguageInfo) bool { return info.Code == code })
	return l[(index+1)%len(l)].Code
}
