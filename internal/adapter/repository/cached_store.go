package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// readThroughCache fronts a loader with an expirable LRU. Concurrent
// misses for the same key collapse into one loader call.
type readThroughCache[T any] struct {
	cache  *expirable.LRU[string, T]
	group  singleflight.Group
	loader func(ctx context.Context, key string) (T, error)
}

func newReadThroughCache[T any](size int, ttl time.Duration, loader func(ctx context.Context, key string) (T, error)) *readThroughCache[T] {
	return &readThroughCache[T]{
		cache:  expirable.NewLRU[string, T](size, nil, ttl),
		loader: loader,
	}
}

func (c *readThroughCache[T]) get(ctx context.Context, key string) (T, error) {
	if value, ok := c.cache.Get(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if value, ok := c.cache.Get(key); ok {
			return value, nil
		}
		value, err := c.loader(ctx, key)
		if err != nil {
			return value, err
		}
		c.cache.Add(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (c *readThroughCache[T]) invalidate(key string) {
	c.cache.Remove(key)
}

// CachedRecordStore wraps the clinic and patient stores with TTL
// caches and supports targeted invalidation when records change.
type CachedRecordStore struct {
	clinics  *readThroughCache[*domain.ClinicRecord]
	patients *readThroughCache[*domain.PatientRecord]
}

// NewCachedRecordStore fronts the given stores. size bounds each cache
// independently; ttl applies to both.
func NewCachedRecordStore(clinics domain.ClinicStore, patients domain.PatientStore, size int, ttl time.Duration) *CachedRecordStore {
	return &CachedRecordStore{
		clinics:  newReadThroughCache(size, ttl, clinics.GetClinic),
		patients: newReadThroughCache(size, ttl, patients.GetPatient),
	}
}

func (s *CachedRecordStore) GetClinic(ctx context.Context, clinicID string) (*domain.ClinicRecord, error) {
	return s.clinics.get(ctx, clinicID)
}

func (s *CachedRecordStore) GetPatient(ctx context.Context, patientID string) (*domain.PatientRecord, error) {
	return s.patients.get(ctx, patientID)
}

func (s *CachedRecordStore) InvalidateClinic(clinicID string) {
	s.clinics.invalidate(clinicID)
}

func (s *CachedRecordStore) InvalidatePatient(patientID string) {
	s.patients.invalidate(patientID)
}

var (
	_ domain.ClinicStore      = (*CachedRecordStore)(nil)
	_ domain.PatientStore     = (*CachedRecordStore)(nil)
	_ domain.CacheInvalidator = (*CachedRecordStore)(nil)
)
