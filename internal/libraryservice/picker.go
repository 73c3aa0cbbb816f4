package libraryservice

import "context"

// Picker is the file dialog collaborator. Each method reports false when the
// user dismissed the dialog.
type Picker interface {
	PickFolder(ctx context.Context, title string) (string, bool)
	PickFile(ctx context.Context, title string) (string, bool)
	SaveFile(ctx context.Context, title, suggested string) (string, bool)
}

// StaticPicker answers every dialog with preset paths. An empty path is a
// cancellation. It backs the HTTP, MCP and CLI surfaces, where the caller
// supplies the paths up front.
type StaticPicker struct {
	Folder string
	File   string
	Save   string
}

var _ Picker = StaticPicker{}

func (p StaticPicker) PickFolder(context.Context, string) (string, bool) {
	return p.Folder, p.Folder != ""
}

func (p StaticPicker) PickFile(context.Context, string) (string, bool) {
	return p.File, p.File != ""
}

// SaveFile returns the preset destination, falling back to suggested when
// Save is "-".
func (p StaticPicker) SaveFile(_ context.Context, _, suggested string) (string, bool) {
	if p.Save == "-" {
		return suggested, true
	}
	return p.Save, p.Save != ""
}
