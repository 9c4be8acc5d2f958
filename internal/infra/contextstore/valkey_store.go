package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
)

// appendScript pushes one entry, trims the list and refreshes the TTL in a single step.
// KEYS[1] list key, ARGV[1] encoded entry, ARGV[2] limit, ARGV[3] ttl seconds (0 keeps the key).
var appendScript = valkey.NewLuaScript(`
redis.call('RPUSH', KEYS[1], ARGV[1])
redis.call('LTRIM', KEYS[1], '-' .. ARGV[2], -1)
if tonumber(ARGV[3]) > 0 then
  redis.call('EXPIRE', KEYS[1], ARGV[3])
end
return redis.call('LLEN', KEYS[1])
`)

// ValkeyStore persists conversation context as Valkey lists, one per conversation key.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	limit  int
	ttl    time.Duration
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, limit int, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "slacksum:context"
	}
	return &ValkeyStore{client: client, prefix: prefix, limit: limit, ttl: ttl}
}

// Get implements agent.ContextStore. A missing key reads as an empty list.
func (s *ValkeyStore) Get(ctx context.Context, key agent.ConversationKey) ([]agent.ContextEntry, error) {
	cmd := s.client.B().Lrange().Key(s.listKey(key)).Start(0).Stop(-1).Build()
	raw, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []agent.ContextEntry{}, nil
		}
		return nil, err
	}
	return decodeEntries(raw)
}

// Append implements agent.ContextStore.
func (s *ValkeyStore) Append(ctx context.Context, key agent.ConversationKey, entry agent.ContextEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	args := []string{string(payload), strconv.Itoa(s.limit), strconv.FormatInt(ttlSeconds(s.ttl), 10)}
	return appendScript.Exec(ctx, s.client, []string{s.listKey(key)}, args).Error()
}

// Trim implements agent.ContextStore.
func (s *ValkeyStore) Trim(ctx context.Context, key agent.ConversationKey, limit int) error {
	if limit <= 0 {
		return nil
	}
	cmd := s.client.B().Ltrim().Key(s.listKey(key)).Start(int64(-limit)).Stop(-1).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) listKey(key agent.ConversationKey) string {
	return fmt.Sprintf("%s:%s", s.prefix, key.String())
}

func decodeEntries(raw []string) ([]agent.ContextEntry, error) {
	out := make([]agent.ContextEntry, 0, len(raw))
	for _, item := range raw {
		var entry agent.ContextEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode context entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	if ttl < time.Second {
		return 1
	}
	return int64(ttl / time.Second)
}

var _ agent.ContextStore = (*ValkeyStore)(nil)
