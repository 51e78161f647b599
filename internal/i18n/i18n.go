// Package i18n holds the localized message tables for the tracker.
package i18n

import "fmt"

// Language is a supported locale tag
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Text directions
const (
	LTR = "ltr"
	RTL = "rtl"
)

// Parse validates a locale tag
func Parse(tag string) (Language, error) {
	switch Language(tag) {
	case English, Arabic:
		return Language(tag), nil
	default:
		return "", fmt.Errorf("unsupported language %q", tag)
	}
}

// Direction returns the reading direction for a language
func Direction(lang Language) string {
	if lang == Arabic {
		return RTL
	}
	return LTR
}

// Lookup returns the message for key in lang, or the key itself when no message exists
func Lookup(lang Language, key string) string {
	table, ok := tables[lang]
	if !ok {
		return key
	}
	if msg, ok := table[key]; ok && msg != "" {
		return msg
	}
	return key
}

// Translator binds Lookup to a fixed language
type Translator func(key string) string

// For returns a Translator for lang
func For(lang Language) Translator {
	return func(key string) string { return Lookup(lang, key) }
}

var tables = map[Language]map[string]string{
	English: en,
	Arabic:  ar,
}
