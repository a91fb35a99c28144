package comment

import (
	"regexp"
	"strconv"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// translationStatPattern matches one row of the translation statistics table
// printed by the CI build, e.g.
//
//	[12:00:01] * de_DE 1200 35 0 0 0 97%
//
// The three counters before the percentage are not used.
var translationStatPattern = regexp.MustCompile(
	`(?m)^\[\d{2}:\d{2}:\d{2}\]\s*\*?\s*(?P<language>\w{2}_\w{2})\s*(?P<translated>\d+)\s*(?P<untranslated>\d+)\s*\d+\s*\d+\s*\d+\s*(?P<percentage>\d+)%\r?$`,
)

var (
	languageGroup     = translationStatPattern.SubexpIndex("language")
	translatedGroup   = translationStatPattern.SubexpIndex("translated")
	untranslatedGroup = translationStatPattern.SubexpIndex("untranslated")
	percentageGroup   = translationStatPattern.SubexpIndex("percentage")
)

// ExtractTranslationStats scans a CI console log for every translation
// statistics row. When a locale appears more than once the last row wins.
// A log without matching rows yields an empty, non-nil map.
func ExtractTranslationStats(log string) model.TranslationStats {
	stats := make(model.TranslationStats)

	for _, match := range translationStatPattern.FindAllStringSubmatch(log, -1) {
		translated, err := strconv.Atoi(match[translatedGroup])
		if err != nil {
			continue
		}
		untranslated, err := strconv.Atoi(match[untranslatedGroup])
		if err != nil {
			continue
		}
		percentage, err := strconv.Atoi(match[percentageGroup])
		if err != nil {
			continue
		}

		language := match[languageGroup]
		stats[language] = model.TranslationStat{
			Language:     language,
			Translated:   translated,
			Untranslated: untranslated,
			Percentage:   percentage,
		}
	}

	return stats
}

// FirstSuccessfulJob returns the first job, in upstream order, whose status is
// exactly "success". The second return value is false when no job succeeded.
func FirstSuccessfulJob(jobs []model.BuildJob) (model.BuildJob, bool) {
	for _, job := range jobs {
		if job.Status == model.JobStatusSuccess {
			return job, true
		}
	}
	return model.BuildJob{}, false
}
