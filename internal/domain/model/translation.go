package model

// TranslationStat holds the translation progress of one locale, as printed by
// the translation statistics step of a CI build.
type TranslationStat struct {
	Language     string // Locale code, e.g. "de_DE".
	Translated   int
	Untranslated int
	Percentage   int // 0-100, integer as printed in the log.
}

// TranslationStats maps a locale code to its statistics.
type TranslationStats map[string]TranslationStat
