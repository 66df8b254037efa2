package waitlist

import (
	"context"
	"errors"

	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/circuitbreaker"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
)

type guardedRepository struct {
	inner   WaitlistRepository
	breaker circuitbreaker.CircuitBreaker
}

// NewGuardedRepository fails fast while the backend keeps erroring. Only
// storage failures trip the breaker; duplicates, bad input and requests the
// caller abandoned do not.
func NewGuardedRepository(inner WaitlistRepository, cfg *circuitbreaker.Config, logger *log.Logger) WaitlistRepository {
	if cfg == nil {
		cfg = circuitbreaker.DefaultConfig()
	}
	cfg.IsFailure = countsAgainstBackend
	if logger != nil {
		name := inner.Name()
		storeLogger := logger.WithComponent("waitlist.store")
		cfg.OnStateChange = func(from, to circuitbreaker.CircuitState) {
			storeLogger.Warn("Waitlist storage circuit changed state", "backend", name, "from", from.String(), "to", to.String())
		}
	}

	return &guardedRepository{
		inner:   inner,
		breaker: circuitbreaker.NewCircuitBreaker(cfg),
	}
}

// countsAgainstBackend ignores cancelled and timed-out requests: a client
// closing the page says nothing about the health of the store.
func countsAgainstBackend(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apperrors.IsStorageFailure(err)
}

func (r *guardedRepository) Name() string {
	return r.inner.Name()
}

func (r *guardedRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.call(func() error {
		var err error
		exists, err = r.inner.Exists(ctx, email)
		return err
	})
	return exists, err
}

func (r *guardedRepository) Append(ctx context.Context, email string) (*models.WaitlistUser, error) {
	var user *models.WaitlistUser
	err := r.call(func() error {
		var err error
		user, err = r.inner.Append(ctx, email)
		return err
	})
	return user, err
}

func (r *guardedRepository) List(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.call(func() error {
		var err error
		emails, err = r.inner.List(ctx)
		return err
	})
	return emails, err
}

// Ping bypasses the breaker so health checks observe recovery directly.
func (r *guardedRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

func (r *guardedRepository) call(fn func() error) error {
	err := r.breaker.Call(fn)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		if r.inner.Name() == constants.BackendDatabase {
			return apperrors.NewDatabaseError(MessageConnectionError, err)
		}
		return apperrors.NewStorageError(MessageStorageUnavailable, err)
	}
	return err
}
