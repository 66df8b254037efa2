package waitlist

import (
	"context"
	"sync"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
)

type memoryRepository struct {
	mu      sync.RWMutex
	emails  []string
	members map[string]struct{}
}

// NewMemoryRepository keeps the waitlist in process memory. Contents are lost on restart.
func NewMemoryRepository(seed ...string) WaitlistRepository {
	r := &memoryRepository{members: make(map[string]struct{}, len(seed))}
	for _, email := range seed {
		if _, ok := r.members[email]; ok {
			continue
		}
		r.members[email] = struct{}{}
		r.emails = append(r.emails, email)
	}
	return r
}

func (r *memoryRepository) Name() string {
	return constants.BackendMemory
}

func (r *memoryRepository) Exists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[email]
	return ok, nil
}

func (r *memoryRepository) Append(_ context.Context, email string) (*models.WaitlistUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[email]; ok {
		return nil, newDuplicateError(nil)
	}
	r.members[email] = struct{}{}
	r.emails = append(r.emails, email)

	return &models.WaitlistUser{
		ID:        uint(len(r.emails)),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (r *memoryRepository) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.emails))
	copy(out, r.emails)
	return out, nil
}

func (r *memoryRepository) Ping(_ context.Context) error {
	return nil
}
