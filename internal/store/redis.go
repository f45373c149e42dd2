package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"SignalScan/internal/model"
)

const redisKeyPrefix = "signal:"

// RedisStore is an alternative SignalStore backend for deployments that
// already run Redis. Keys are "signal:<symbol>:<date>" with a JSON value;
// a TTL slightly beyond the retention window bounds growth even if the
// scheduled purge never runs.
type RedisStore struct {
	cli *redis.Client
	ttl time.Duration
}

// RedisConfig carries the connection settings for a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, retentionDays int) (*RedisStore, error) {
	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := cli.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("redis signal store connected")
	return &RedisStore{
		cli: cli,
		ttl: time.Duration(retentionDays+1) * 24 * time.Hour,
	}, nil
}

func redisKey(symbol, date string) string {
	return redisKeyPrefix + symbol + ":" + date
}

func (r *RedisStore) Get(symbol, date string) (*model.SignalRecord, bool) {
	data, err := r.cli.Get(context.Background(), redisKey(symbol, date)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Str("date", date).Msg("redis read failed, treating as miss")
		return nil, false
	}

	var rec model.SignalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("redis decode failed, treating as miss")
		return nil, false
	}
	return &rec, true
}

func (r *RedisStore) Put(symbol, date string, rec *model.SignalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.cli.Set(context.Background(), redisKey(symbol, date), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s@%s: %w", symbol, date, err)
	}
	return nil
}

func (r *RedisStore) GetMany(symbols []string, date string) *Partition {
	part := &Partition{}
	if len(symbols) == 0 {
		return part
	}

	keys := make([]string, len(symbols))
	for i, symbol := range symbols {
		keys[i] = redisKey(symbol, date)
	}
	values, err := r.cli.MGet(context.Background(), keys...).Result()
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("redis bulk read failed, treating all as misses")
		part.Missing = append(part.Missing, symbols...)
		return part
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			part.Missing = append(part.Missing, symbols[i])
			continue
		}
		var rec model.SignalRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			log.Error().Err(err).Str("symbol", symbols[i]).Msg("redis decode failed, treating as miss")
			part.Missing = append(part.Missing, symbols[i])
			continue
		}
		part.Cached = append(part.Cached, &rec)
	}
	return part
}

// PurgeOlderThan walks the signal keyspace and deletes entries whose date
// component is strictly older than the cutoff day.
func (r *RedisStore) PurgeOlderThan(days int) (int, error) {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	deleted := 0
	iter := r.cli.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		date := key[strings.LastIndex(key, ":")+1:]
		if date < cutoff {
			if err := r.cli.Del(ctx, key).Err(); err != nil {
				return deleted, fmt.Errorf("redis del %s: %w", key, err)
			}
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	return deleted, nil
}

func (r *RedisStore) Stats() (*Stats, error) {
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")
	st := &Stats{}
	symbols := make(map[string]struct{})

	iter := r.cli.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		st.TotalRecords++

		rest := strings.TrimPrefix(key, redisKeyPrefix)
		if i := strings.LastIndex(rest, ":"); i > 0 {
			symbols[rest[:i]] = struct{}{}
			if rest[i+1:] == today {
				st.RecordsToday++
			}
		}
		if size, err := r.cli.StrLen(ctx, key).Result(); err == nil {
			st.StorageSizeBytes += size
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	st.UniqueSymbols = len(symbols)
	return st, nil
}

func (r *RedisStore) Close() error {
	log.Info().Msg("closing redis signal store")
	return r.cli.Close()
}
