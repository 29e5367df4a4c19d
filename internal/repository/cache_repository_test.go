package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type fakeCacheMetrics struct {
	hits   int
	misses int
}

func (f *fakeCacheMetrics) RecordCacheOperation(hit bool, _ time.Duration) {
	if hit {
		f.hits++
	} else {
		f.misses++
	}
}

func TestCacheRepositoryNilClientMissesWithoutRecording(t *testing.T) {
	metrics := &fakeCacheMetrics{}
	repo := NewCacheRepository(nil, nil, metrics)

	var dest map[string]string
	err := repo.Get(context.Background(), "schedule:7:conflicts", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Zero(t, metrics.hits)
	assert.Zero(t, metrics.misses)
}

func TestCacheRepositoryRecordsMissOnFailedLookup(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	metrics := &fakeCacheMetrics{}
	repo := NewCacheRepository(client, nil, metrics)

	var dest map[string]string
	err := repo.Get(context.Background(), "schedule:7:conflicts", &dest)
	require.Error(t, err)
	assert.Equal(t, 1, metrics.misses)
	assert.Zero(t, metrics.hits)
}
