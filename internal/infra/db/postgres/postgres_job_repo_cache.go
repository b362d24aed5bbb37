package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
	"promptmarket/internal/infra/metrics"
	red "promptmarket/internal/infra/redis"
)

var _ repository.JobRepository = (*jobRepoCacheDecorator)(nil)

// jobRepoCacheDecorator serves FindByID from redis. Locked reads and every
// write go straight to the inner repo; writes invalidate first so a
// committed mutation is never shadowed by a stale entry.
type jobRepoCacheDecorator struct {
	inner repository.JobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewJobRepoCacheDecorator(inner repository.JobRepository, cache red.RedisClient, ttl time.Duration) repository.JobRepository {
	return &jobRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func jobCacheKey(id string) string { return fmt.Sprintf("job:id:%s", id) }

func (d *jobRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, j *model.Job) error {
	_ = d.cache.Del(ctx, jobCacheKey(j.ID))
	return d.inner.Save(ctx, tx, j)
}

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	key := jobCacheKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var job model.Job
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("job", "hit")
			return &job, nil
		}
	}
	if err != nil && err != redis.Nil {
		// Redis trouble degrades to a database read, never to an error.
		metrics.IncCacheRequest("job", "error")
	} else {
		metrics.IncCacheRequest("job", "miss")
	}
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(job); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return job, nil
}

// FindByIDForUpdate must observe the locked row, so it never reads the cache.
func (d *jobRepoCacheDecorator) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	return d.inner.FindByIDForUpdate(ctx, tx, id)
}

func (d *jobRepoCacheDecorator) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	_ = d.cache.Del(ctx, jobCacheKey(id))
	return d.inner.UpdateStatus(ctx, tx, id, status)
}
