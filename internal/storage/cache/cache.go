// Package cache puts a Redis read-through cache in front of catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salonbook/internal/model"
	"salonbook/internal/storage"
)

const (
	servicesKey      = "salonbook:services"
	professionalsKey = "salonbook:professionals"
)

// Store decorates a storage.Store. Cache failures fall back to the
// underlying store.
type Store struct {
	storage.Store
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

var _ storage.Store = (*Store)(nil)

// New wraps next with a Redis cache holding entries for ttl.
func New(next storage.Store, client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Store {
	return &Store{Store: next, redis: client, ttl: ttl, logger: logger}
}

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	if s.readCache(ctx, servicesKey, &out) {
		return out, nil
	}
	out, err := s.Store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, servicesKey, out)
	return out, nil
}

func (s *Store) SaveService(ctx context.Context, svc *model.Service) error {
	defer s.invalidate(ctx, servicesKey)
	return s.Store.SaveService(ctx, svc)
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	defer s.invalidate(ctx, servicesKey)
	return s.Store.DeleteService(ctx, id)
}

func (s *Store) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	var out []model.Professional
	if s.readCache(ctx, professionalsKey, &out) {
		return out, nil
	}
	out, err := s.Store.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, professionalsKey, out)
	return out, nil
}

func (s *Store) SaveProfessional(ctx context.Context, p *model.Professional) error {
	defer s.invalidate(ctx, professionalsKey)
	return s.Store.SaveProfessional(ctx, p)
}

func (s *Store) DeleteProfessional(ctx context.Context, id string) error {
	defer s.invalidate(ctx, professionalsKey)
	return s.Store.DeleteProfessional(ctx, id)
}

// Ping checks both Redis and the underlying store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return s.Store.Ping(ctx)
}

func (s *Store) readCache(ctx context.Context, key string, out any) bool {
	if s.ttl <= 0 {
		return false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (s *Store) writeCache(ctx context.Context, key string, val any) {
	if s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *Store) invalidate(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}
