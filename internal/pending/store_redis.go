package pending

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

const (
	// Redis key prefix for outstanding request entries.
	pendingKeyPrefix = "rcf:pending:"
)

// consumeScript atomically checks kind and abandonment before deleting, so
// two concurrent callbacks for the same request id can never both succeed
// and a kind mismatch never evicts the entry.
var consumeScript = redis.NewScript(`
local kind = redis.call('HGET', KEYS[1], 'kind')
if not kind then
  return {'missing'}
end
local abandoned = redis.call('HGET', KEYS[1], 'abandoned')
if abandoned == '1' then
  return {'missing'}
end
if kind ~= ARGV[1] then
  return {'mismatch'}
end
local subject = redis.call('HGET', KEYS[1], 'subject')
local issued = redis.call('HGET', KEYS[1], 'issued_at')
redis.call('DEL', KEYS[1])
return {'ok', subject, issued}
`)

// RedisStore is the shared-deployment correlation table. Entries are hashes
// keyed by the gateway request id; no TTL is set because a request that
// never receives a callback must stay visible as a permanently pending
// (eventually abandoned) audit record.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func pendingKey(id domain.RequestID) string {
	return pendingKeyPrefix + string(id)
}

func (s *RedisStore) Create(ctx context.Context, req Request) error {
	key := pendingKey(req.ID)
	created, err := s.client.HSetNX(ctx, key, "kind", string(req.Kind)).Result()
	if err != nil {
		return fmt.Errorf("create pending entry: %w", err)
	}
	if !created {
		return sentinel.ErrConflict
	}
	err = s.client.HSet(ctx, key,
		"subject", string(req.Subject),
		"issued_at", strconv.FormatInt(req.IssuedAt.UTC().UnixNano(), 10),
		"abandoned", "0",
	).Err()
	if err != nil {
		return fmt.Errorf("create pending entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id domain.RequestID) (Request, error) {
	fields, err := s.client.HGetAll(ctx, pendingKey(id)).Result()
	if err != nil {
		return Request{}, fmt.Errorf("get pending entry: %w", err)
	}
	if len(fields) == 0 {
		return Request{}, sentinel.ErrNotFound
	}
	return decodeFields(id, fields)
}

func (s *RedisStore) Consume(ctx context.Context, id domain.RequestID, kind domain.RequestKind) (Request, error) {
	raw, err := consumeScript.Run(ctx, s.client, []string{pendingKey(id)}, string(kind)).Result()
	if err != nil {
		return Request{}, fmt.Errorf("consume pending entry: %w", err)
	}
	reply, ok := raw.([]interface{})
	if !ok || len(reply) == 0 {
		return Request{}, errors.New("consume pending entry: unexpected script reply")
	}
	switch reply[0] {
	case "missing":
		return Request{}, sentinel.ErrNotFound
	case "mismatch":
		return Request{}, sentinel.ErrInvalidState
	}
	req := Request{ID: id, Kind: kind}
	if len(reply) == 3 {
		if subject, ok := reply[1].(string); ok {
			req.Subject = domain.SubjectKey(subject)
		}
		if issued, ok := reply[2].(string); ok {
			if nanos, err := strconv.ParseInt(issued, 10, 64); err == nil {
				req.IssuedAt = time.Unix(0, nanos).UTC()
			}
		}
	}
	return req, nil
}

func (s *RedisStore) SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error) {
	marked := 0
	iter := s.client.Scan(ctx, 0, pendingKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HMGet(ctx, key, "issued_at", "abandoned").Result()
		if err != nil {
			return marked, fmt.Errorf("sweep pending entries: %w", err)
		}
		issued, ok := fields[0].(string)
		if !ok {
			continue
		}
		if abandoned, _ := fields[1].(string); abandoned == "1" {
			continue
		}
		nanos, err := strconv.ParseInt(issued, 10, 64)
		if err != nil || !time.Unix(0, nanos).Before(cutoff) {
			continue
		}
		if err := s.client.HSet(ctx, key, "abandoned", "1").Err(); err != nil {
			return marked, fmt.Errorf("sweep pending entries: %w", err)
		}
		marked++
	}
	if err := iter.Err(); err != nil {
		return marked, fmt.Errorf("sweep pending entries: %w", err)
	}
	return marked, nil
}

func decodeFields(id domain.RequestID, fields map[string]string) (Request, error) {
	kind, err := domain.ParseRequestKind(fields["kind"])
	if err != nil {
		return Request{}, fmt.Errorf("pending entry %s holds invalid kind %q", id, fields["kind"])
	}
	req := Request{
		ID:        id,
		Kind:      kind,
		Subject:   domain.SubjectKey(fields["subject"]),
		Abandoned: fields["abandoned"] == "1",
	}
	if nanos, err := strconv.ParseInt(fields["issued_at"], 10, 64); err == nil {
		req.IssuedAt = time.Unix(0, nanos).UTC()
	}
	return req, nil
}
