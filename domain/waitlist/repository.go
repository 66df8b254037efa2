package waitlist

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/akeren/aimaker-waitlist/internal/models"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

// WaitlistRepository is an order-preserving set of email addresses.
type WaitlistRepository interface {
	// Exists reports whether email is already a member. Comparison is exact.
	Exists(ctx context.Context, email string) (bool, error)
	// Append adds email at the end of the list. It returns a Conflict error
	// when the email is already present, even if Exists said otherwise.
	Append(ctx context.Context, email string) (*models.WaitlistUser, error)
	// List returns every email in insertion order.
	List(ctx context.Context) ([]string, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health output.
	Name() string
}

func newDuplicateError(cause error) error {
	return apperrors.NewConflictError(MessageDuplicate, cause)
}

// newBackendError classifies a raw backend failure. Unreachable backends get a
// connection message naming the kind of store; everything else is reported as
// an unexpected failure.
func newBackendError(relational bool, cause error) error {
	if relational {
		if isConnectionError(cause) {
			return apperrors.NewDatabaseError(MessageConnectionError, cause)
		}
		return apperrors.NewDatabaseError(MessageUnexpected, cause)
	}
	if isConnectionError(cause) {
		return apperrors.NewStorageError(MessageStorageUnavailable, cause)
	}
	return apperrors.NewStorageError(MessageUnexpected, cause)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"server selection error",
		"failed to connect",
		"unable to open database file",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
