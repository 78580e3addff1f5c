package source

import (
	"time"
)

// CommitInfo contains metadata about a Git commit.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// PullResult contains the result of a pull operation.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// SourceMetrics tracks template source operation counts.
type SourceMetrics struct {
	SuccessfulPulls   int64
	FailedPulls       int64
	SuccessfulReloads int64
	FailedReloads     int64
	LastReloadTime    time.Time
	SkippedPolls      int64 // Polls where only non-template files changed
}
