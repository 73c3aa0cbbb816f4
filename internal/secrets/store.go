// Package secrets restricts access to the OS credential store to a fixed set
// of key identifiers.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/starford/lectern/internal/apperr"
)

// DefaultService is the credential store service the keys are filed under.
const DefaultService = "com.cmf.reader"

// KeyID names a secret the application is allowed to touch.
type KeyID string

// KeyComprehensionGemini holds the API key used for comprehension quizzes.
const KeyComprehensionGemini KeyID = "comprehension-gemini"

// KnownKeys lists every allowed key identifier.
var KnownKeys = []KeyID{KeyComprehensionGemini}

// probeAccount is read by IsAvailable; it is never written.
const probeAccount = "__availability_probe__"

// ParseKeyID validates a raw key identifier against the allow-list.
func ParseKeyID(raw string) (KeyID, error) {
	for _, k := range KnownKeys {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("secrets: %w: %s", apperr.ErrUnknownKeyID, raw)
}

// Store reads and writes allowed keys in the OS keyring.
type Store struct {
	service string
}

// New creates a Store filing entries under service.
func New(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Get returns the stored value for id. A missing or blank entry reports false
// without an error.
func (s *Store) Get(id KeyID) (string, bool, error) {
	if _, err := ParseKeyID(string(id)); err != nil {
		return "", false, err
	}
	value, err := keyring.Get(s.service, string(id))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("secrets: get %s: %w: %w", id, apperr.ErrSecretService, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Set stores value for id. A nil or blank value deletes the entry; deleting an
// entry that does not exist is not an error.
func (s *Store) Set(id KeyID, value *string) error {
	if _, err := ParseKeyID(string(id)); err != nil {
		return err
	}
	var trimmed string
	if value != nil {
		trimmed = strings.TrimSpace(*value)
	}
	if trimmed == "" {
		err := keyring.Delete(s.service, string(id))
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("secrets: delete %s: %w: %w", id, apperr.ErrSecretService, err)
		}
		return nil
	}
	if err := keyring.Set(s.service, string(id), trimmed); err != nil {
		return fmt.Errorf("secrets: set %s: %w: %w", id, apperr.ErrSecretService, err)
	}
	return nil
}

// IsAvailable probes the credential store with a read. Only a missing entry
// counts as success.
func (s *Store) IsAvailable() bool {
	_, err := keyring.Get(s.service, probeAccount)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
