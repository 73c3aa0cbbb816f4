package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
)

// Load reads and validates the manifest at path.
func Load(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest %s: %w", apperr.ErrIO, path, err)
	}
	return Parse(data)
}

// Parse decodes a manifest and rejects anything that does not match the
// current schema and version or carries blank required fields.
func Parse(data []byte) (*models.Manifest, error) {
	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w: %w", apperr.ErrManifestMalformed, err)
	}
	if m.Schema != Schema || m.Version != Version {
		return nil, fmt.Errorf("manifest: %w: schema %q version %d", apperr.ErrManifestSchemaMismatch, m.Schema, m.Version)
	}
	if err := validate(&m); err != nil {
		return nil, fmt.Errorf("manifest: %w: %w", apperr.ErrManifestMalformed, err)
	}
	return &m, nil
}

var (
	notBlank = validation.By(func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return errors.New("must not be blank")
		}
		return nil
	})

	singleSegment = validation.By(func(value any) error {
		s, _ := value.(string)
		if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
			return errors.New("must be a single folder name")
		}
		return nil
	})

	rootRelative = validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`) || filepath.IsAbs(s) || filepath.VolumeName(s) != "" {
			return errors.New("must be relative to the source root")
		}
		for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' }) {
			if seg == ".." {
				return errors.New("must not leave the source root")
			}
		}
		return nil
	})
)

func validate(m *models.Manifest) error {
	declared := make(map[string]struct{}, len(m.Sources))
	for i := range m.Sources {
		s := &m.Sources[i]
		if err := validation.ValidateStruct(s,
			validation.Field(&s.Name, notBlank),
			validation.Field(&s.RootName, notBlank, singleSegment),
		); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		declared[s.Name] = struct{}{}
	}
	for i := range m.Entries {
		e := &m.Entries[i]
		if err := validation.ValidateStruct(e,
			validation.Field(&e.SourceName, notBlank),
			validation.Field(&e.RelativePath, notBlank, rootRelative),
			validation.Field(&e.Type, notBlank, validation.In(models.TypePDF, models.TypeEPUB, models.TypeTXT)),
			validation.Field(&e.NormalizedTextRelativePath, rootRelative),
		); err != nil {
			return fmt.Errorf("entries[%d]: %w", i, err)
		}
		if _, ok := declared[e.SourceName]; !ok {
			return fmt.Errorf("entries[%d]: source %q is not declared", i, e.SourceName)
		}
	}
	return nil
}
