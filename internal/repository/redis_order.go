package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisOrderContextStore persists the show/seats/amount context of each
// created payment order so verification can use the server-held record
// instead of re-trusting the client's copy. Entries expire on their own,
// roughly in step with the gateway-side order validity.
type RedisOrderContextStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisOrderContextStore(client redis.UniversalClient, ttl time.Duration) *RedisOrderContextStore {
	return &RedisOrderContextStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisOrderContextStore) Put(ctx context.Context, order domain.OrderContext) error {
	orderBytes, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order context: %w", err)
	}

	err = s.client.Set(ctx, orderContextKey(order.OrderID), orderBytes, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store order context: %w", err)
	}

	return nil
}

func (s *RedisOrderContextStore) Get(ctx context.Context, orderID string) (*domain.OrderContext, error) {
	orderBytes, err := s.client.Get(ctx, orderContextKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get order context: %w", err)
	}

	var order domain.OrderContext

	err = json.Unmarshal(orderBytes, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal order context: %w", err)
	}

	return &order, nil
}

func (s *RedisOrderContextStore) Delete(ctx context.Context, orderID string) error {
	return s.client.Del(ctx, orderContextKey(orderID)).Err()
}

func orderContextKey(orderID string) string {
	return fmt.Sprintf("order_ctx:%s", orderID)
}
