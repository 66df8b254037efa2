package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/akeren/aimaker-waitlist/pkg/retry"
	"github.com/go-redis/redis/v8"
)

const redisTxAttempts = 5

type redisRepository struct {
	client *redis.Client
	key    string
	retry  retry.RetryPolicy
}

// NewRedisRepository keeps the whole waitlist as one JSON array under key.
// Appends use WATCH/MULTI and are retried when another writer wins the race.
func NewRedisRepository(client *redis.Client, key string) WaitlistRepository {
	if key == "" {
		key = constants.DefaultWaitlistRedisKey
	}

	return &redisRepository{
		client: client,
		key:    key,
		retry: retry.NewFixedDelay(&retry.Config{
			MaxAttempts: redisTxAttempts,
			BaseDelay:   10 * time.Millisecond,
			Retryable: func(err error) bool {
				return errors.Is(err, redis.TxFailedErr)
			},
		}),
	}
}

func (r *redisRepository) Name() string {
	return constants.BackendRedis
}

func (r *redisRepository) Exists(ctx context.Context, email string) (bool, error) {
	emails, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return containsEmail(emails, email), nil
}

func (r *redisRepository) Append(ctx context.Context, email string) (*models.WaitlistUser, error) {
	err := r.retry.ExecuteContext(ctx, func() error {
		return r.client.Watch(ctx, func(tx *redis.Tx) error {
			emails, err := decodeEmails(tx.Get(ctx, r.key))
			if err != nil {
				return err
			}
			if containsEmail(emails, email) {
				return newDuplicateError(nil)
			}

			encoded, err := json.Marshal(append(emails, email))
			if err != nil {
				return fmt.Errorf("encode waitlist: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, r.key, encoded, 0)
				return nil
			})
			return err
		}, r.key)
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, err
		}
		return nil, newBackendError(false, err)
	}

	return &models.WaitlistUser{Email: email, CreatedAt: time.Now().UTC()}, nil
}

func (r *redisRepository) List(ctx context.Context) ([]string, error) {
	emails, err := decodeEmails(r.client.Get(ctx, r.key))
	if err != nil {
		return nil, newBackendError(false, err)
	}
	return emails, nil
}

func (r *redisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return newBackendError(false, err)
	}
	return nil
}

// decodeEmails treats a missing key as an empty waitlist and a corrupt value as an error.
func decodeEmails(cmd *redis.StringCmd) ([]string, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	emails := []string{}
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("decode waitlist: %w", err)
	}
	return emails, nil
}
