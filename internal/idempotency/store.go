// Package idempotency stores replay records for client Idempotency-Key
// headers, so a retried place-order request returns the first response
// instead of creating a second order.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	recordTTL    = 24 * time.Hour
	inFlightMark = "__in_flight__"
)

var (
	// ErrInFlight means another request with the same key has started but
	// not finished yet.
	ErrInFlight = errors.New("request with this idempotency key is in flight")
)

type Store struct {
	client *redis.Client
	log    *zap.Logger
}

func NewStore(addr, password string, db int, log *zap.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("redis connected", zap.String("addr", addr))

	return &Store{client: rdb, log: log}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func key(userID, idemKey string) string {
	return fmt.Sprintf("idem:%s:%s", userID, idemKey)
}

// Begin claims the key for this request. It returns the stored response body
// when a finished request already used the key, ErrInFlight when one is still
// running, and ("", nil) when the claim is fresh.
func (s *Store) Begin(ctx context.Context, userID, idemKey string) (string, error) {
	ok, err := s.client.SetNX(ctx, key(userID, idemKey), inFlightMark, recordTTL).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}

	val, err := s.client.Get(ctx, key(userID, idemKey)).Result()
	if errors.Is(err, redis.Nil) {
		// record expired between SetNX and Get, treat as fresh
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if val == inFlightMark {
		return "", ErrInFlight
	}
	return val, nil
}

// Complete stores the response body for later replays of the same key.
func (s *Store) Complete(ctx context.Context, userID, idemKey, responseBody string) error {
	return s.client.Set(ctx, key(userID, idemKey), responseBody, recordTTL).Err()
}

// Abandon releases a claimed key after a failed request so the client can
// retry with the same key.
func (s *Store) Abandon(ctx context.Context, userID, idemKey string) error {
	return s.client.Del(ctx, key(userID, idemKey)).Err()
}
