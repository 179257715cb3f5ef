package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	DefaultBucket = "autocost_quota"
	DefaultKey    = "daily_usage"

	maxUpdateAttempts = 5
)

// ErrContention means a write lost the optimistic-concurrency race too many
// times in a row.
var ErrContention = errors.New("quota: too much write contention")

// KVConfig configures a KV tracker.
type KVConfig struct {
	Bucket string
	Key    string
	Limit  int
	Now    func() time.Time
}

// KV is a Tracker stored in a NATS JetStream key-value bucket so that every
// API and worker instance shares one counter.
type KV struct {
	kv    nats.KeyValue
	key   string
	limit int
	now   func() time.Time
}

// NewKV binds to the bucket, creating it when missing.
func NewKV(js nats.JetStreamContext, cfg KVConfig) (*KV, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	kv, err := js.KeyValue(cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      cfg.Bucket,
			Description: "daily analysis usage",
			History:     1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("quota: bind bucket %s: %w", cfg.Bucket, err)
	}
	limit, now := normalize(cfg.Limit, cfg.Now)
	return &KV{kv: kv, key: cfg.Key, limit: limit, now: now}, nil
}

// load returns the stored usage and its revision; revision 0 means no entry.
func (t *KV) load() (Usage, uint64, error) {
	entry, err := t.kv.Get(t.key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return Usage{}, 0, nil
	}
	if err != nil {
		return Usage{}, 0, fmt.Errorf("quota: get %s: %w", t.key, err)
	}
	var u Usage
	if err := json.Unmarshal(entry.Value(), &u); err != nil {
		// A corrupt entry is overwritten on the next Record.
		return Usage{}, entry.Revision(), nil
	}
	return u, entry.Revision(), nil
}

func (t *KV) Remaining(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	u, _, err := t.load()
	if err != nil {
		return 0, err
	}
	return u.remaining(t.limit, dayOf(t.now())), nil
}

// Record increments today's counter.
func (t *KV) Record(ctx context.Context) error {
	return t.update(ctx, func(u Usage, day string) (Usage, bool, error) {
		return u.next(day), true, nil
	})
}

// Reserve takes one unit if any is left today.
func (t *KV) Reserve(ctx context.Context) error {
	limit := t.limit
	return t.update(ctx, func(u Usage, day string) (Usage, bool, error) {
		next, ok := u.reserve(limit, day)
		if !ok {
			return u, false, ErrExhausted
		}
		return next, true, nil
	})
}

// Release gives back one unit of today's usage.
func (t *KV) Release(ctx context.Context) error {
	return t.update(ctx, func(u Usage, day string) (Usage, bool, error) {
		next, changed := u.release(day)
		return next, changed, nil
	})
}

// update applies change to the stored usage with a revision-checked write,
// retrying when another instance wrote first. Nothing is written when change
// reports no change.
func (t *KV) update(ctx context.Context, change func(Usage, string) (Usage, bool, error)) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		u, rev, err := t.load()
		if err != nil {
			return err
		}
		next, changed, err := change(u, dayOf(t.now()))
		if err != nil || !changed {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("quota: marshal: %w", err)
		}
		if rev == 0 {
			_, err = t.kv.Create(t.key, data)
		} else {
			_, err = t.kv.Update(t.key, data, rev)
		}
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return fmt.Errorf("quota: write %s: %w", t.key, err)
		}
	}
	return ErrContention
}

func isConflict(err error) bool {
	if errors.Is(err, nats.ErrKeyExists) {
		return true
	}
	var apiErr *nats.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == nats.JSErrCodeStreamWrongLastSequence
}
