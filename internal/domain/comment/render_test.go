package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

func TestRenderTranslationTable(t *testing.T) {
	stats := model.TranslationStats{
		"fr_FR": {Language: "fr_FR", Translated: 98, Untranslated: 25, Percentage: 79},
		"de_DE": {Language: "de_DE", Translated: 120, Untranslated: 3, Percentage: 97},
	}

	want := "## Translation stats\n\n" +
		"|language|translated|untranslated|percentage done|\n" +
		"|--------|----------|------------|---------------|\n" +
		"|de_DE|120|3|97|\n" +
		"|fr_FR|98|25|79|\n" +
		"\n"

	assert.Equal(t, want, RenderTranslationTable(stats))
}

func TestRenderTranslationTable_OrderIndependent(t *testing.T) {
	a := model.TranslationStats{}
	b := model.TranslationStats{}
	for _, lang := range []string{"zh_CN", "de_DE", "pt_BR", "en_GB"} {
		a[lang] = model.TranslationStat{Language: lang, Translated: 1}
	}
	for _, lang := range []string{"en_GB", "pt_BR", "de_DE", "zh_CN"} {
		b[lang] = model.TranslationStat{Language: lang, Translated: 1}
	}

	assert.Equal(t, RenderTranslationTable(a), RenderTranslationTable(b))
}

func TestRenderTranslationTable_Empty(t *testing.T) {
	want := "## Translation stats\n\n" +
		"|language|translated|untranslated|percentage done|\n" +
		"|--------|----------|------------|---------------|\n" +
		"\n"

	assert.Equal(t, want, RenderTranslationTable(nil))
}
