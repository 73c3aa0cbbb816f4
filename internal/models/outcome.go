package models

// Outcome statuses for picker-backed operations. Failure is reported through
// the error return, never through a status.
const (
	StatusCancelled = "cancelled"
	StatusExported  = "exported"
	StatusImported  = "imported"
)

// ExportResult is returned by a picker-backed manifest export.
type ExportResult struct {
	Status      string `json:"status"`
	Path        string `json:"path,omitempty"`
	SourceCount *int   `json:"sourceCount,omitempty"`
	EntryCount  *int   `json:"entryCount,omitempty"`
}

// ImportResult is returned by a picker-backed manifest import.
type ImportResult struct {
	Status         string               `json:"status"`
	ManifestPath   string               `json:"manifestPath,omitempty"`
	SharedRootPath string               `json:"sharedRootPath,omitempty"`
	Added          *int                 `json:"added,omitempty"`
	Existing       *int                 `json:"existing,omitempty"`
	Missing        *int                 `json:"missing,omitempty"`
	Results        []ImportSourceResult `json:"results,omitempty"`
}

// CancelledExport returns the export outcome for a dismissed picker.
func CancelledExport() *ExportResult {
	return &ExportResult{Status: StatusCancelled}
}

// CancelledImport returns the import outcome for a dismissed picker.
func CancelledImport() *ImportResult {
	return &ImportResult{Status: StatusCancelled}
}
