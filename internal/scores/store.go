package scores

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store persists the best survival time in whole seconds.
type Store interface {
	Best() (int, error)
	Save(seconds int) error
}

type bestRecord struct {
	BestSeconds int `yaml:"best_seconds"`
}

// FileStore keeps the record in a small YAML file. A missing file reads as 0.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Best() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read best time %s", s.path)
	}
	var rec bestRecord
	if err = yaml.Unmarshal(data, &rec); err != nil {
		return 0, errors.Wrapf(ErrCorruptRecord, "%s: %v", s.path, err)
	}
	if rec.BestSeconds < 0 {
		return 0, errors.Wrapf(ErrCorruptRecord, "%s: negative best %d", s.path, rec.BestSeconds)
	}
	return rec.BestSeconds, nil
}

// Save writes through a temp file and rename so readers never see a torn file.
func (s *FileStore) Save(seconds int) error {
	if seconds < 0 {
		return errors.Wrapf(ErrNegativeTime, "%d", seconds)
	}
	data, err := yaml.Marshal(bestRecord{BestSeconds: seconds})
	if err != nil {
		return errors.Wrap(err, "encode best time")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".best-*.yaml")
	if err != nil {
		return errors.Wrap(err, "create temp best time file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write best time")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close best time")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace best time")
}

// MemoryStore is a process-local Store used when persistence is disabled.
type MemoryStore struct {
	mu   sync.Mutex
	best int
}

func (m *MemoryStore) Best() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.best, nil
}

func (m *MemoryStore) Save(seconds int) error {
	if seconds < 0 {
		return errors.Wrapf(ErrNegativeTime, "%d", seconds)
	}
	m.mu.Lock()
	m.best = seconds
	m.mu.Unlock()
	return nil
}
