// Package apperr defines the error kinds returned across the library packages.
// Callers match them with errors.Is; the wrapped message carries the detail.
package apperr

import "errors"

var (
	ErrPathNotFound           = errors.New("path does not exist")
	ErrNoSourcesConfigured    = errors.New("no library sources configured")
	ErrPathOutsideLibrary     = errors.New("path is outside configured library sources")
	ErrNotADirectory          = errors.New("not a directory")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrNoNormalizedSnapshot   = errors.New("no normalized text snapshot")
	ErrManifestSchemaMismatch = errors.New("unsupported library manifest format")
	ErrManifestMalformed      = errors.New("invalid library manifest")
	ErrSharedRootInvalid      = errors.New("shared root is not a directory")
	ErrUnknownKeyID           = errors.New("unsupported API key id")
	ErrSecretService          = errors.New("secure storage failure")
	ErrIO                     = errors.New("i/o failure")
)
