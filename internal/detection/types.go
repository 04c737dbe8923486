// Package detection defines the domain types shared by the analysis client,
// the history store and the orchestrator: sessions, results and verdicts as
// the detection service reports them.
package detection

import (
	"path/filepath"
	"strings"
)

// MediaKind distinguishes still images from videos. It determines which
// optional Result fields are meaningful: frame predictions only exist for
// videos.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Verdict is the binary classification outcome.
type Verdict string

const (
	VerdictFake Verdict = "FAKE"
	VerdictReal Verdict = "REAL"
)

// Session is a lightweight history entry summarizing one completed analysis.
// Sessions are immutable once created and are destroyed only on explicit
// deletion.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      MediaKind `json:"type"`
	Status    Verdict   `json:"status"`
	Timestamp string    `json:"timestamp"`
}

// FramePrediction is the per-frame fake probability for one sampled frame.
type FramePrediction struct {
	ID   int     `json:"id"`
	Prob float64 `json:"prob"`
}

// Result is the full analysis payload for one session. Confidence is a
// percentage in [0, 100]. FramePredictions is only populated for video input;
// Heatmaps may be empty when no overlay was produced.
type Result struct {
	InputType        MediaKind         `json:"input_type"`
	FinalPrediction  Verdict           `json:"final_prediction"`
	Confidence       float64           `json:"confidence"`
	FramePredictions []FramePrediction `json:"frame_predictions"`
	Heatmaps         []string          `json:"heatmaps"`
}

// KindForContentType derives the media kind from a declared content type:
// anything whose type starts with "video" is a video, everything else is
// treated as an image.
func KindForContentType(contentType string) MediaKind {
	if strings.HasPrefix(contentType, "video") {
		return MediaVideo
	}
	return MediaImage
}

// contentTypes maps the supported upload extensions to their declared
// content types, mirroring the service's allow-list.
var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
}

// ContentTypeForPath returns the declared content type for a file path based
// on its extension, or "" when the extension is not a supported media type.
func ContentTypeForPath(path string) string {
	return contentTypes[strings.ToLower(filepath.Ext(path))]
}

// SupportedMedia reports whether the file at path has an extension the
// detection service accepts.
func SupportedMedia(path string) bool {
	return ContentTypeForPath(path) != ""
}
