package output

import (
	"encoding/json"
	"io"
	"time"
)

// CurrentSchemaVersion is the schema version stamped on every JSON payload.
const CurrentSchemaVersion = "1.0.0"

// WriteJSON writes a JSON object to w, indented for readability. When
// --format json is used, the payload goes to stdout and diagnostics go
// to stderr via Console.Warning/Error.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns the elapsed time in milliseconds since start.
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// VersionsOutput is the JSON payload for the versions command.
type VersionsOutput struct {
	SchemaVersion string   `json:"schemaVersion"`
	PackageName   string   `json:"packageName"`
	Versions      []string `json:"versions"`
	ElapsedMs     int64    `json:"elapsedMs"`
}

// DetailsOutput is the JSON payload for the details command.
type DetailsOutput struct {
	SchemaVersion string   `json:"schemaVersion"`
	PackageName   string   `json:"packageName"`
	Version       string   `json:"version"`
	Source        string   `json:"source"`
	DownloadLink  string   `json:"downloadLink"`
	Unlisted      bool     `json:"unlisted"`
	LicenseURL    string   `json:"licenseUrl,omitempty"`
	Dependencies  []string `json:"dependencies"`
	ElapsedMs     int64    `json:"elapsedMs"`
}

// InstallOutput is the JSON payload for the install command.
type InstallOutput struct {
	SchemaVersion string `json:"schemaVersion"`
	PackageName   string `json:"packageName"`
	Version       string `json:"version"`
	InstallPath   string `json:"installPath"`
	ElapsedMs     int64  `json:"elapsedMs"`
}

// SourceHealthResult is one source's entry in SourcesHealthOutput.
type SourceHealthResult struct {
	Source  string `json:"source"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SourcesHealthOutput is the JSON payload for the sources health command.
type SourcesHealthOutput struct {
	SchemaVersion string               `json:"schemaVersion"`
	Overall       string               `json:"overall"`
	Sources       []SourceHealthResult `json:"sources"`
	ElapsedMs     int64                `json:"elapsedMs"`
}
