package waitlist

import (
	"context"
	"errors"

	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository stores members in the waitlist_users table. The unique
// index on email decides duplicates at insert time.
func NewGormRepository(db *gorm.DB) WaitlistRepository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Name() string {
	return constants.BackendDatabase
}

func (r *gormRepository) Exists(ctx context.Context, email string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.WaitlistUser{}).
		Where("email = ?", email).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, newBackendError(true, err)
	}

	return count > 0, nil
}

func (r *gormRepository) Append(ctx context.Context, email string) (*models.WaitlistUser, error) {
	user := &models.WaitlistUser{Email: email}

	// Connection pins one pooled connection for the insert and releases it on every path.
	err := r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return conn.Create(user).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, newDuplicateError(err)
		}
		return nil, newBackendError(true, err)
	}

	return user, nil
}

func (r *gormRepository) List(ctx context.Context) ([]string, error) {
	emails := []string{}

	err := r.db.WithContext(ctx).
		Model(&models.WaitlistUser{}).
		Order("id ASC").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, newBackendError(true, err)
	}

	return emails, nil
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return newBackendError(true, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return newBackendError(true, err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
