package model

// Platform identifies an operating system a test build is produced for.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformOSX     Platform = "osx"
)

// Platforms lists the platforms carried by a deployment comment, in the order
// their link lines appear in a freshly created comment.
var Platforms = []Platform{PlatformWindows, PlatformLinux, PlatformOSX}

// NormalizePlatform maps a snapshot-service platform label to the label used
// in the deployment comment. The service reports macOS builds as "macos";
// every other label passes through unchanged.
func NormalizePlatform(label string) Platform {
	if label == "macos" {
		return PlatformOSX
	}
	return Platform(label)
}

// IsKnown reports whether p is one of the platforms in Platforms.
func (p Platform) IsKnown() bool {
	switch p {
	case PlatformWindows, PlatformLinux, PlatformOSX:
		return true
	}
	return false
}

// JobStatus is the status string AppVeyor reports for a build job.
type JobStatus string

const (
	JobStatusSuccess JobStatus = "success"
)

// Webhook actions the orchestrator reacts to.
const (
	ActionOpened  = "opened"
	ActionCreated = "created"
)
