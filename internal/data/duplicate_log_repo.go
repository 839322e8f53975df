package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/practicejobs/ingest/internal/domain/model"
)

// duplicateLogKey is the Redis list holding the duplicate audit log.
const duplicateLogKey = "ingest:duplicates"

// DuplicateLogRepo is a bounded, age-expiring audit log for postings
// discarded by cross-source deduplication, backed by a Redis list. Entries
// beyond the cap are trimmed on every write and the whole key expires when
// no duplicates arrive for the retention window.
type DuplicateLogRepo struct {
	client redis.UniversalClient
	cap    int64
	ttl    time.Duration
}

// DuplicateLogConfig groups retention settings for the duplicate log.
type DuplicateLogConfig struct {
	Cap int
	TTL time.Duration
}

// NewDuplicateLogRepo creates a DuplicateLogRepo with the given client and retention.
func NewDuplicateLogRepo(client redis.UniversalClient, cfg DuplicateLogConfig) *DuplicateLogRepo {
	capacity := int64(cfg.Cap)
	if capacity < 1 {
		capacity = 1
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &DuplicateLogRepo{client: client, cap: capacity, ttl: ttl}
}

// Record appends one duplicate sighting, trimming the log to its cap and
// refreshing the key's TTL.
func (r *DuplicateLogRepo) Record(ctx context.Context, rec model.DuplicateRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal duplicate record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, duplicateLogKey, payload)
	pipe.LTrim(ctx, duplicateLogKey, 0, r.cap-1)
	pipe.Expire(ctx, duplicateLogKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record duplicate: %w", err)
	}
	return nil
}

// Recent returns up to limit most-recent duplicate records, newest first.
func (r *DuplicateLogRepo) Recent(ctx context.Context, limit int) ([]model.DuplicateRecord, error) {
	if limit < 1 {
		limit = 1
	}
	raw, err := r.client.LRange(ctx, duplicateLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read duplicate log: %w", err)
	}

	records := make([]model.DuplicateRecord, 0, len(raw))
	for _, entry := range raw {
		var rec model.DuplicateRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			// A malformed entry is dropped rather than failing the read.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
