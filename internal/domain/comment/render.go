package comment

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// RenderTranslationTable formats stats as the translation statistics block,
// heading included. Rows are sorted by locale code so the output does not
// depend on map iteration order. The block ends with a blank line.
func RenderTranslationTable(stats model.TranslationStats) string {
	languages := make([]string, 0, len(stats))
	for language := range stats {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	var b strings.Builder
	b.WriteString(TranslationStatsHeading + "\n\n")
	b.WriteString("|language|translated|untranslated|percentage done|\n")
	b.WriteString("|--------|----------|------------|---------------|\n")
	for _, language := range languages {
		stat := stats[language]
		b.WriteString("|" + language)
		b.WriteString("|" + strconv.Itoa(stat.Translated))
		b.WriteString("|" + strconv.Itoa(stat.Untranslated))
		b.WriteString("|" + strconv.Itoa(stat.Percentage))
		b.WriteString("|\n")
	}
	b.WriteString("\n")

	return b.String()
}
