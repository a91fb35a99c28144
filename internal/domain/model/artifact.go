package model

import "time"

// ArtifactLink is one downloadable test build reported by the snapshot service.
type ArtifactLink struct {
	Platform  Platform
	URL       string
	CreatedAt time.Time // Zero when the service sent an unparseable timestamp.
}
