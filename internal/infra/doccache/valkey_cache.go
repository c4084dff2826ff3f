package doccache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

// ValkeyCache shares fetched documents across replicas through a Valkey-compatible server.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache namespaced under prefix.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "activity"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, city string) ([]byte, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.documentKey(city)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, city string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	cmd := c.client.B().Set().Key(c.documentKey(city)).Value(valkey.BinaryString(payload)).Ex(ttl).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) documentKey(city string) string {
	return fmt.Sprintf("%s:doc:%s", c.prefix, city)
}

var _ activity.DocumentCache = (*ValkeyCache)(nil)
