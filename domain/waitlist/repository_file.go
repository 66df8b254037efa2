package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
)

// ErrWaitlistFileNotFound is returned by WaitlistFile.Load when nothing has been saved yet.
var ErrWaitlistFileNotFound = errors.New("waitlist file not found")

// WaitlistFile reads and writes the flat JSON array of emails.
type WaitlistFile struct {
	path string
}

func NewWaitlistFile(path string) *WaitlistFile {
	return &WaitlistFile{path: path}
}

func (f *WaitlistFile) Path() string {
	return f.path
}

// Load returns ErrWaitlistFileNotFound for a missing file. Any other read or
// parse failure is returned as is so corruption is never mistaken for emptiness.
func (f *WaitlistFile) Load() ([]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrWaitlistFileNotFound
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	emails := []string{}
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return emails, nil
}

// Save replaces the file atomically: write a sibling temp file, then rename.
func (f *WaitlistFile) Save(emails []string) error {
	if emails == nil {
		emails = []string{}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	encoded, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return fmt.Errorf("encode waitlist: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", f.path, err)
	}
	return nil
}

type fileRepository struct {
	file *WaitlistFile
	// mu serialises every read-modify-write cycle within the process.
	mu sync.Mutex
}

func NewFileRepository(path string) WaitlistRepository {
	return &fileRepository{file: NewWaitlistFile(path)}
}

func (r *fileRepository) Name() string {
	return constants.BackendFile
}

func (r *fileRepository) load() ([]string, error) {
	emails, err := r.file.Load()
	if errors.Is(err, ErrWaitlistFileNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, newBackendError(false, err)
	}
	return emails, nil
}

func (r *fileRepository) Exists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, newBackendError(false, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	emails, err := r.load()
	if err != nil {
		return false, err
	}
	return containsEmail(emails, email), nil
}

func (r *fileRepository) Append(ctx context.Context, email string) (*models.WaitlistUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, newBackendError(false, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	emails, err := r.load()
	if err != nil {
		return nil, err
	}
	if containsEmail(emails, email) {
		return nil, newDuplicateError(nil)
	}

	if err := r.file.Save(append(emails, email)); err != nil {
		return nil, newBackendError(false, err)
	}

	return &models.WaitlistUser{Email: email, CreatedAt: time.Now().UTC()}, nil
}

func (r *fileRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, newBackendError(false, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Ping succeeds when the file is readable or simply not created yet.
func (r *fileRepository) Ping(ctx context.Context) error {
	_, err := r.List(ctx)
	return err
}

func containsEmail(emails []string, email string) bool {
	for _, e := range emails {
		if e == email {
			return true
		}
	}
	return false
}
