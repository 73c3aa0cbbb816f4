// Package models defines the domain types for Lectern.
package models

// Supported book types, lowercase file extensions without the dot.
const (
	TypePDF  = "pdf"
	TypeEPUB = "epub"
	TypeTXT  = "txt"
)

// LibrarySource is a user-registered root directory.
// Identity is the canonical absolute Path; Name is only a display label.
type LibrarySource struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// LibraryItem is one book file found by a scan. Never persisted.
type LibraryItem struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	Type          string  `json:"type"`
	Size          int64   `json:"size"`
	ModifiedAt    float64 `json:"modifiedAt"` // epoch millis
	ParentDir     string  `json:"parentDir,omitempty"`
	IsFrontmatter bool    `json:"isFrontmatter"`
}

// Chapter is a titled section of extracted content.
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractedContent is the readable text of a book plus presentation metadata.
// PageCount and Chapters are only filled by richer parsers.
type ExtractedContent struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	SourcePath   string    `json:"sourcePath,omitempty"`
	AssetBaseURL string    `json:"assetBaseUrl,omitempty"`
	PageCount    *int      `json:"pageCount,omitempty"`
	Chapters     []Chapter `json:"chapters,omitempty"`
}
