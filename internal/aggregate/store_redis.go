package aggregate

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

const (
	// Redis key prefix for retailer aggregates.
	aggregateKeyPrefix = "rcf:aggregate:"
)

// RedisStore shares aggregates across instances. Handle bytes are base64
// encoded into hash fields; redis never sees anything decryptable.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func aggregateKey(retailer domain.RetailerID) string {
	return aggregateKeyPrefix + retailer.String()
}

func (s *RedisStore) Get(ctx context.Context, retailer domain.RetailerID) (RetailerAggregate, error) {
	fields, err := s.client.HGetAll(ctx, aggregateKey(retailer)).Result()
	if err != nil {
		return RetailerAggregate{}, fmt.Errorf("get aggregate: %w", err)
	}
	if len(fields) == 0 {
		return RetailerAggregate{}, sentinel.ErrNotFound
	}
	loss, err := base64.StdEncoding.DecodeString(fields["total_loss"])
	if err != nil {
		return RetailerAggregate{}, fmt.Errorf("get aggregate: decode loss handle: %w", err)
	}
	count, err := base64.StdEncoding.DecodeString(fields["incident_count"])
	if err != nil {
		return RetailerAggregate{}, fmt.Errorf("get aggregate: decode count handle: %w", err)
	}
	return RetailerAggregate{
		TotalLoss:     fhe.NewHandle(loss),
		IncidentCount: fhe.NewHandle(count),
		Initialized:   fields["initialized"] == "1",
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, retailer domain.RetailerID, agg RetailerAggregate) error {
	initialized := "0"
	if agg.Initialized {
		initialized = "1"
	}
	err := s.client.HSet(ctx, aggregateKey(retailer),
		"total_loss", base64.StdEncoding.EncodeToString(agg.TotalLoss.Bytes()),
		"incident_count", base64.StdEncoding.EncodeToString(agg.IncidentCount.Bytes()),
		"initialized", initialized,
	).Err()
	if err != nil {
		return fmt.Errorf("put aggregate: %w", err)
	}
	return nil
}
