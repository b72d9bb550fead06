// Package settings persists the terminal client's language preference and
// anonymous visitor id between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"agentskill/i18n"
)

// ErrInvalidLanguage rejects anything but the supported codes.
var ErrInvalidLanguage = errors.New("invalid language")

const (
	keyLanguage  = i18n.StorageKey
	keyVisitorID = "visitor_id"
)

// DefaultPath is ~/.agentskill/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".agentskill", "config.json"), nil
}

// Store is read once at startup and written whenever a value changes.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads path, creating the file and a visitor id when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(keyLanguage, "")
	v.SetDefault(keyVisitorID, "")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	s := &Store{v: v, path: path}
	if _, err := uuid.Parse(v.GetString(keyVisitorID)); err != nil {
		v.Set(keyVisitorID, uuid.NewString())
		if err := s.write(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path is the backing file.
func (s *Store) Path() string { return s.path }

// Language returns the stored preference; ok is false when none was saved.
func (s *Store) Language() (i18n.Language, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return i18n.FromStored(s.v.GetString(keyLanguage))
}

// SetLanguage stores lang, touching the file only when it changed.
func (s *Store) SetLanguage(lang i18n.Language) error {
	if _, ok := i18n.Parse(string(lang)); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v.GetString(keyLanguage) == string(lang) {
		return nil
	}
	s.v.Set(keyLanguage, string(lang))
	return s.write()
}

// VisitorID is the stable anonymous id sent with visit tracking.
func (s *Store) VisitorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(keyVisitorID)
}

func (s *Store) write() error {
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}
