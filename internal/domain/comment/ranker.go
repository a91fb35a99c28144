package comment

import (
	"sort"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// LatestPerPlatform selects the most recent artifact for each platform.
//
// Platform labels are normalized first (macos becomes osx). Links whose
// normalized platform is not one of model.Platforms are dropped. The result
// holds at most one link per platform, ordered windows, linux, osx, and omits
// platforms with no links. Ties on CreatedAt keep the upstream order.
func LatestPerPlatform(links []model.ArtifactLink) []model.ArtifactLink {
	buckets := make(map[model.Platform][]model.ArtifactLink, len(model.Platforms))
	for _, link := range links {
		link.Platform = model.NormalizePlatform(string(link.Platform))
		if !link.Platform.IsKnown() {
			continue
		}
		buckets[link.Platform] = append(buckets[link.Platform], link)
	}

	latest := make([]model.ArtifactLink, 0, len(model.Platforms))
	for _, platform := range model.Platforms {
		bucket := buckets[platform]
		if len(bucket) == 0 {
			continue
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].CreatedAt.After(bucket[j].CreatedAt)
		})
		latest = append(latest, bucket[0])
	}

	return latest
}
