package session

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// StorageKey is the key the session record is persisted under
const StorageKey = "auth-storage"

// Storage defines the interface for persisting the session record.
//
// Implementations must be safe for concurrent use. Load returns
// (nil, nil) when nothing is stored under key.
type Storage interface {
	// Load returns the bytes stored under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces whatever is stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return errors.New(errors.ErrCodeFileWriteFailed, "invalid storage key: "+key)
	}
	return nil
}

// FileStorage keeps one <key>.json file per key inside Dir.
//
// Writes go to a temporary file that is renamed into place. Files are
// created with mode 0600.
type FileStorage struct {
	Dir string

	mu sync.Mutex
}

// NewFileStorage creates a file-backed storage rooted at dir
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Load reads the record stored under key
func (f *FileStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read session file", err).
			WithSuggestion("Check permissions on " + f.Dir)
	}
	return data, nil
}

// Save atomically replaces the record stored under key
func (f *FileStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create storage directory", err)
	}

	tmp, err := os.CreateTemp(f.Dir, "."+key+"-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create session file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to secure session file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session file", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to replace session file", err)
	}
	return nil
}

// MemoryStorage implements in-memory storage.
//
// This is suitable for tests and for sessions that must not outlive the
// process.
type MemoryStorage struct {
	records sync.Map
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns a copy of the bytes stored under key
func (m *MemoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.records.Load(key)
	if !ok {
		return nil, nil
	}
	data, _ := value.([]byte)
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key
func (m *MemoryStorage) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New(errors.ErrCodeFileWriteFailed, "storage key cannot be empty")
	}
	m.records.Store(key, append([]byte(nil), data...))
	return nil
}
