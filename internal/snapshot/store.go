// Package snapshot persists the last full sync as one JSON document.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hubsync-backend/internal/components/assert"
	"hubsync-backend/internal/scrapers/hub"
	"os"
	"path/filepath"
)

// ErrNoSnapshot is returned by Load before the first sync is saved.
var ErrNoSnapshot = errors.New("no snapshot saved yet")

type Store struct {
	path string
}

func NewStore(path string) Store {
	assert.NotEmptyStr(path, "snapshot path")
	return Store{path: path}
}

func (s Store) Path() string {
	return s.path
}

func encode(snap hub.SyncSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(snap)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save overwrites the stored snapshot. The file is replaced atomically so a
// concurrent Load never reads half a document.
func (s Store) Save(snap hub.SyncSnapshot) error {
	data, err := encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Raw returns the stored document as written.
func (s Store) Raw() (json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("snapshot %s is not valid json", s.path)
	}
	return data, nil
}

func (s Store) Load() (hub.SyncSnapshot, error) {
	data, err := s.Raw()
	if err != nil {
		return hub.SyncSnapshot{}, err
	}
	var snap hub.SyncSnapshot
	err = json.Unmarshal(data, &snap)
	if err != nil {
		return hub.SyncSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
