package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings for RedisOpener.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration
}

// RedisOpener keeps each sheet as a Redis list of JSON-encoded rows.
//
// Data structure:
//   - {prefix}sheet:{name} -> list, index 0 is the header row
type RedisOpener struct {
	client *redis.Client
	prefix string
}

// NewRedisOpener creates a client from cfg. The connection is checked lazily
// by Open.
func NewRedisOpener(cfg RedisConfig) *RedisOpener {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	return &RedisOpener{client: client, prefix: cfg.KeyPrefix}
}

// NewRedisOpenerWithClient wraps an existing client (useful for testing).
func NewRedisOpenerWithClient(client *redis.Client, prefix string) *RedisOpener {
	return &RedisOpener{client: client, prefix: prefix}
}

func (o *RedisOpener) Close() error {
	return o.client.Close()
}

func (o *RedisOpener) Open(ctx context.Context, name string) (Sheet, error) {
	if err := o.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("open sheet %q: %w: %w", name, common.ErrAuth, err)
	}
	return &RedisSheet{client: o.client, key: o.prefix + "sheet:" + name}, nil
}

// RedisSheet is a Sheet stored in one Redis list.
type RedisSheet struct {
	client *redis.Client
	key    string
}

// deleteAtScript removes the element at a 0-based index in one round trip,
// so no other writer can shift positions between lookup and removal.
var deleteAtScript = redis.NewScript(`
	local idx = tonumber(ARGV[1])
	if idx < 0 or idx >= redis.call('LLEN', KEYS[1]) then
		return 0
	end
	redis.call('LSET', KEYS[1], idx, ARGV[2])
	redis.call('LREM', KEYS[1], 1, ARGV[2])
	return 1
`)

const tombstone = "\x00deleted"

func (s *RedisSheet) ReadAll(ctx context.Context) ([][]string, error) {
	raws, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	result := make([][]string, 0, len(raws))
	for _, raw := range raws {
		cells, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	return result, nil
}

func (s *RedisSheet) AppendRow(ctx context.Context, row []string) error {
	raw, err := encodeRow(row)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, raw).Err(); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *RedisSheet) DeleteRow(ctx context.Context, index int) error {
	removed, err := deleteAtScript.Run(ctx, s.client, []string{s.key}, index-1, tombstone).Int()
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", index, err)
	}
	if removed == 0 {
		return fmt.Errorf("row %d: %w", index, common.ErrorNotFound)
	}
	return nil
}

func (s *RedisSheet) UpdateHeaderCell(ctx context.Context, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("column %d: %w", col, common.ErrorNotFound)
	}
	raw, err := s.client.LIndex(ctx, s.key, 0).Result()
	if err == redis.Nil {
		header, err := encodeRow(setCell(nil, col, value))
		if err != nil {
			return err
		}
		return s.client.RPush(ctx, s.key, header).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	cells, err := decodeRow(raw)
	if err != nil {
		return err
	}
	updated, err := encodeRow(setCell(cells, col, value))
	if err != nil {
		return err
	}
	if err := s.client.LSet(ctx, s.key, 0, updated).Err(); err != nil {
		return fmt.Errorf("failed to update header: %w", err)
	}
	return nil
}
