package config

import "strings"

const (
	LangEN = "en"
	LangES = "es"

	defaultLang = LangEN
)

// GetLocaleConfig normalizes lang to a supported message catalogue, falling
// back to English. The second result is false when lang was not supported.
func GetLocaleConfig(lang string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "":
		return defaultLang, true
	case LangEN:
		return LangEN, true
	case LangES:
		return LangES, true
	default:
		return defaultLang, false
	}
}
