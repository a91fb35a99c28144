package comment

import "strings"

// TranslationStatsHeading opens the translation statistics block.
const TranslationStatsHeading = "## Translation stats"

const linkPlaceholder = "(download pending, check back soon!)"

// NewBody returns the initial deployment comment for a pull request. The
// translation statistics block is only included when title equals
// translationTitle, the title used by automated translation-sync PRs.
func NewBody(title, translationTitle string) string {
	var b strings.Builder

	b.WriteString("Hey there! Thanks for helping Mudlet improve. :star2:\n\n")
	b.WriteString("## Test versions\n\n")
	b.WriteString("You can directly test the changes here:\n")
	b.WriteString("- linux: " + linkPlaceholder + "\n")
	b.WriteString("- osx: " + linkPlaceholder + "\n")
	b.WriteString("- windows: " + linkPlaceholder + "\n\n")
	b.WriteString("No need to install anything - just unzip and run.\n")
	b.WriteString("Let us know if it works well, and if it doesn't, please give details.\n")

	if title == translationTitle {
		b.WriteString("\n")
		b.WriteString(TranslationStatsHeading + "\n\n")
		b.WriteString("calculation pending, check back soon!\n\n")
	}

	return b.String()
}
