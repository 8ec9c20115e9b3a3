package store

import (
	"context"
	"encoding/json"
	"sync"

	"lernplan_backend/internal/util"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

// localEnvelope umhüllt den Snapshot mit einer Versionsmarke, da das
// Dateisystem selbst keine Versionen kennt.
type localEnvelope struct {
	Version string          `json:"version"`
	Content json.RawMessage `json:"content"`
}

// LocalStore hält das Snapshot in einem diskv-Key-Value-Verzeichnis.
type LocalStore struct {
	d   *diskv.Diskv
	key string
	mu  sync.Mutex
}

func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024,
		}),
		key: "lernplan.json",
	}
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Fetch(ctx context.Context) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *LocalStore) read() ([]byte, string, error) {
	if !s.d.Has(s.key) {
		return nil, "", util.ErrStoreNotFound
	}
	raw, err := s.d.Read(s.key)
	if err != nil {
		return nil, "", err
	}
	var env localEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", err
	}
	return env.Content, env.Version, nil
}

func (s *LocalStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read()
	switch {
	case err == util.ErrStoreNotFound:
		current = ""
	case err != nil:
		return "", err
	}
	if current != expected {
		return "", util.ErrStoreConflict
	}

	env := localEnvelope{
		Version: uuid.NewString(),
		Content: json.RawMessage(content),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	if err := s.d.Write(s.key, raw); err != nil {
		return "", err
	}
	return env.Version, nil
}
