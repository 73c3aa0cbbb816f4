package models

// Manifest is the portable snapshot of a library's structure.
type Manifest struct {
	Schema     string           `json:"schema"`
	Version    int              `json:"version"`
	ExportedAt string           `json:"exportedAt"`
	Sources    []ManifestSource `json:"sources"`
	Entries    []ManifestEntry  `json:"entries"`
}

// ManifestSource carries a source's display name and the last segment of its
// directory, the only anchor that survives a move to another machine.
type ManifestSource struct {
	Name     string `json:"name"`
	RootName string `json:"rootName"`
}

// ManifestEntry is one book, addressed relative to its source root with
// forward slashes.
type ManifestEntry struct {
	SourceName                 string  `json:"sourceName"`
	RelativePath               string  `json:"relativePath"`
	Type                       string  `json:"type"`
	NormalizedTextRelativePath string  `json:"normalizedTextRelativePath,omitempty"`
	Size                       int64   `json:"size"`
	ModifiedAt                 float64 `json:"modifiedAt"`
}

// Import statuses reported per manifest source.
const (
	ImportAdded    = "added"
	ImportExisting = "existing"
	ImportMissing  = "missing"
)

// ImportSourceResult reports how one manifest source was reconciled.
type ImportSourceResult struct {
	SourceName   string `json:"sourceName"`
	Status       string `json:"status"`
	ResolvedPath string `json:"resolvedPath,omitempty"`
	Message      string `json:"message"`
}

// ImportSummary aggregates a manifest import.
type ImportSummary struct {
	Added    int                  `json:"added"`
	Existing int                  `json:"existing"`
	Missing  int                  `json:"missing"`
	Results  []ImportSourceResult `json:"results"`
}
